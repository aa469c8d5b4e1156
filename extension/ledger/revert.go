// revert.go implements the "sopstory revert" command for version rollback.
//
// Separated from ledger.go to isolate version argument parsing.
//
// Design: Revert is forward-moving - it publishes the old content as a new
// version rather than deleting newer ones, so the ledger records the
// rollback itself. An 8-char key names a version directly without the
// story id.

package ledger

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/revert"
)

func (e *Extension) newRevertCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "revert <id|key> [version]",
		Short: "Revert a story to a previous version",
		Long: `Revert a story to a previous version by publishing the old content as a new version.

The old content is validated again before it is stored.

The target can be specified as:
  - A story id and version number: sopstory revert SOP-7 3
  - A version key from history:     sopstory revert ab12cd34`,
		Args: cobra.RangeArgs(1, 2),
		RunE: e.runRevert,
	}
	c.Flags().Bool(extension.FlagCheckFiles, false, "Check referenced files exist")
	return c
}

func (e *Extension) runRevert(c *cobra.Command, args []string) error {
	ctx := c.Context()
	target := args[0]
	checkFiles, _ := c.Flags().GetBool(extension.FlagCheckFiles)

	version := 0
	if len(args) == 2 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("invalid version %q: must be a number", args[1]))
		}
		if v < 1 {
			return cmd.PrintJSONError(fmt.Errorf("version must be >= 1, got %d", v))
		}
		version = v
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	l := log.Event("ledger:revert", "revert").
		Author(cmd.Author()).
		Story(target).
		Version(version)

	result, err := revert.Run(ctx, w, e.svc, target, version, revert.Options{
		Author:     cmd.Author(),
		Message:    cmd.Message(),
		CheckFiles: checkFiles,
	})
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}

	l.Story(result.Story).
		ResultVersion(result.NewVersion).
		Detail("reverted_to", result.RevertedTo).
		Write(nil)

	return cmd.PrintJSON(result)
}
