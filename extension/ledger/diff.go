// diff.go implements the "sopstory diff" command for comparing versions.
//
// Separated from ledger.go to isolate version range parsing and the
// working-file mode.
//
// Design: Diff has three modes:
// - latest against the version before it (default)
// - two stored versions (--versions 3:5)
// - the latest version against a working file (--file), normalised the way
//   publish would, so only real edits show up
// Output is a line diff of the encoded JSON followed by a step summary.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/log"
)

func (e *Extension) newDiffCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "diff <id>",
		Short: "Show differences between story versions",
		Long: `Show differences between published versions of a story.

Examples:
  sopstory diff SOP-7                    # latest against previous
  sopstory diff SOP-7 --versions 3:5     # version 3 against version 5
  sopstory diff SOP-7 --file SOP-7.json  # latest against a working file`,
		Args: cobra.ExactArgs(1),
		RunE: e.runDiff,
	}
	c.Flags().String(extension.FlagVersions, "", "Version range (e.g., 3:5)")
	c.Flags().BoolP(extension.FlagDeleted, "D", false, "Allow diffing retired stories")
	c.Flags().StringP(extension.FlagFile, "f", "", "Compare the latest version against this file")
	return c
}

func (e *Extension) runDiff(c *cobra.Command, args []string) error {
	ctx := c.Context()
	id := args[0]
	verRange, _ := c.Flags().GetString(extension.FlagVersions)
	del, _ := c.Flags().GetBool(extension.FlagDeleted)
	file, _ := c.Flags().GetString(extension.FlagFile)

	opts := diff.Options{IncludeDeleted: del, File: file}
	if verRange != "" {
		if file != "" {
			return cmd.PrintJSONError(fmt.Errorf("--versions and --file cannot be combined"))
		}
		var err error
		opts.Version1, opts.Version2, err = diff.ParseVersionRange(verRange)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	r, err := diff.Run(ctx, w, e.svc, id, opts, cmd.TTY())

	log.Event("ledger:diff", "diff").
		Author(cmd.Author()).
		Story(id).
		File(file).
		Detail("versions", verRange).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("diff %q: %w", id, err))
	}
	return cmd.PrintJSON(r)
}
