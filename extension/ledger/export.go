// export.go implements the "sopstory export" command.
//
// Separated from import.go because export resolves stories from the ledger
// and owns the overwrite check on the destination.
//
// Design: Export writes the stored bytes exactly, one <id>.json per story,
// so an export can be re-imported without producing new versions. --yaml
// trades that for a hand-editable copy.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/exporter"
	"github.com/jpl-au/sopstory/internal/log"
)

func (e *Extension) newExportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "export [id] <dir>",
		Short: "Write published stories to the filesystem",
		Long: `Write the latest version of one story, or of every story, to a directory.

Examples:
  sopstory export ./out                  # every active story
  sopstory export SOP-7 ./out -v 2       # version 2 of SOP-7
  sopstory export --path SOP- ./out      # stories whose id starts with SOP-`,
		Args: cobra.RangeArgs(1, 2),
		RunE: e.runExport,
	}
	c.Flags().IntP(extension.FlagVersion, "v", 0, "Export a specific version (single story only)")
	c.Flags().StringP(extension.FlagPath, "p", "", "Only stories whose id starts with this prefix")
	c.Flags().Bool(extension.FlagYAML, false, "Write YAML instead of JSON")
	return c
}

func (e *Extension) runExport(c *cobra.Command, args []string) error {
	ctx := c.Context()
	ver, _ := c.Flags().GetInt(extension.FlagVersion)
	prefix, _ := c.Flags().GetString(extension.FlagPath)
	asYAML, _ := c.Flags().GetBool(extension.FlagYAML)

	target, dst := "", args[0]
	if len(args) == 2 {
		target, dst = args[0], args[1]
	}
	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := exporter.Run(ctx, w, e.svc, target, dst, exporter.Options{
		Prefix:  prefix,
		Version: ver,
		YAML:    asYAML,
		Force:   cmd.Force(),
	})

	log.Event("ledger:export", "export").
		Author(cmd.Author()).
		Story(target).
		File(dst).
		Version(ver).
		Detail("exported", result.Exported).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("export: %w", err))
	}
	return cmd.PrintJSON(result)
}
