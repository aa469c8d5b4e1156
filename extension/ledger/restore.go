// restore.go implements the "sopstory restore" command.
//
// Separated from rm.go because restore accepts a version key as well as
// a story id, resolved with retired stories included.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/rm"
)

func (e *Extension) newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id|key>",
		Short: "Restore a retired story",
		Long:  `Reactivate a retired story with its version history intact.`,
		Args:  cobra.ExactArgs(1),
		RunE:  e.runRestore,
	}
}

func (e *Extension) runRestore(c *cobra.Command, args []string) error {
	ctx := c.Context()
	input := args[0]

	v, err := e.svc.Resolve(ctx, input, true)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("%q: %w", input, err))
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := rm.Restore(ctx, w, e.svc, v.Story)

	log.Event("ledger:restore", "restore").
		Author(cmd.Author()).
		Story(v.Story).
		Detail("input", input).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("restore %q: %w", v.Story, err))
	}
	return cmd.PrintJSON(result)
}
