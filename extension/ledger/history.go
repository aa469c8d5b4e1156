// history.go implements the "sopstory history" command.
//
// Separated from ledger.go to isolate the limit and diff flags.
//
// Design: History lists versions newest first with their keys, so any of
// them can be passed back to cat, diff or revert. -d shows what each
// version changed against the one before it.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/history"
	"github.com/jpl-au/sopstory/internal/log"
)

func (e *Extension) newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "history <id|key>",
		Short: "Show version history",
		Long:  `Show the published versions of a story, newest first.`,
		Args:  cobra.ExactArgs(1),
		RunE:  e.runHistory,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Limit number of versions")
	c.Flags().BoolP(extension.FlagDeleted, "D", false, "Include retired versions")
	c.Flags().BoolP(extension.FlagDiff, "d", false, "Show changes between versions")
	return c
}

func (e *Extension) runHistory(c *cobra.Command, args []string) error {
	ctx := c.Context()
	target := args[0]
	limit, _ := c.Flags().GetInt(extension.FlagLimit)
	del, _ := c.Flags().GetBool(extension.FlagDeleted)
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)

	if limit < 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be >= 0, got %d", limit))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := history.Run(ctx, w, e.svc, target, history.Options{
		Limit:          limit,
		IncludeDeleted: del,
		ShowDiff:       showDiff,
		Colour:         cmd.TTY(),
	})

	l := log.Event("ledger:history", "history").
		Author(cmd.Author()).
		Story(target)
	if result.Story != "" {
		l.Story(result.Story)
	}
	l.Detail("count", len(result.Versions)).Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("history %q: %w", target, err))
	}
	return cmd.PrintJSON(result.ToJSON())
}
