// ls.go implements the "sopstory ls" command for listing published stories.
//
// Separated from ledger.go to isolate filter and sort flag handling.
//
// Design: Ls mimics Unix ls. -l shows the ledger metadata (version, steps,
// warnings, author, time) as a table; --warnings narrows the listing to
// stories that were published with outstanding warnings.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/ls"
)

func (e *Extension) newLsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List published stories",
		Long:  `List the latest version of every published story, optionally filtered by id prefix.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  e.runLs,
	}
	c.Flags().BoolP(extension.FlagAll, "A", false, "Include retired stories")
	c.Flags().BoolP(extension.FlagDeleted, "D", false, "Show only retired stories")
	c.Flags().BoolP(extension.FlagLong, "l", false, "Long format with metadata")
	c.Flags().Bool(extension.FlagWarnings, false, "Only stories published with warnings")
	c.Flags().StringP(extension.FlagSort, "s", "", "Sort by: name, time")
	c.Flags().BoolP(extension.FlagReverse, "R", false, "Reverse sort order")
	return c
}

func (e *Extension) runLs(c *cobra.Command, args []string) error {
	ctx := c.Context()
	opts := ls.Options{}
	if len(args) > 0 {
		opts.Prefix = args[0]
	}
	opts.IncludeAll, _ = c.Flags().GetBool(extension.FlagAll)
	opts.DeletedOnly, _ = c.Flags().GetBool(extension.FlagDeleted)
	opts.Long, _ = c.Flags().GetBool(extension.FlagLong)
	opts.Warnings, _ = c.Flags().GetBool(extension.FlagWarnings)
	opts.Reverse, _ = c.Flags().GetBool(extension.FlagReverse)

	sortBy, _ := c.Flags().GetString(extension.FlagSort)
	if sortBy != "" && sortBy != "name" && sortBy != "time" {
		return cmd.PrintJSONError(fmt.Errorf("invalid sort field %q: must be 'name' or 'time'", sortBy))
	}
	opts.Sort = ls.SortField(sortBy)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := ls.Run(ctx, w, e.svc, opts)

	log.Event("ledger:ls", "list").
		Author(cmd.Author()).
		Story(opts.Prefix).
		Detail("count", result.Count()).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls %q: %w", opts.Prefix, err))
	}
	return cmd.PrintJSON(result.ToJSON())
}
