// rm.go implements the "sopstory rm" command for retiring stories.
//
// Separated from ledger.go to isolate the prefix handling.
//
// Design: Rm retires rather than deletes. A retired story keeps its history,
// drops out of ls, and refuses new versions until restored. Vacuum removes
// it for good.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/rm"
)

func (e *Extension) newRmCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "rm <id>",
		Short: "Retire a story",
		Long:  `Retire a published story (recoverable via restore until vacuumed).`,
		Args:  cobra.ExactArgs(1),
		RunE:  e.runRm,
	}
	c.Flags().Bool(extension.FlagPrefix, false, "Retire every story whose id starts with the argument")
	return c
}

func (e *Extension) runRm(c *cobra.Command, args []string) error {
	ctx := c.Context()
	target := args[0]
	prefix, _ := c.Flags().GetBool(extension.FlagPrefix)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := rm.Run(ctx, w, e.svc, target, rm.Options{Prefix: prefix})

	log.Event("ledger:rm", "retire").
		Author(cmd.Author()).
		Story(target).
		Detail("prefix", prefix).
		Detail("count", len(result.Stories)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm %q: %w", target, err))
	}
	return cmd.PrintJSON(result)
}
