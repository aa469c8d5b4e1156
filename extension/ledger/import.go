// import.go implements the "sopstory import" command for bulk publishing.
//
// Separated from publish.go because import walks a directory and keeps
// going past rejected stories, reporting each file's outcome.
//
// Design: Import publishes every .json, .yaml and .yml file under a
// directory through the same pipeline as publish. A rejected story does not
// stop the run; the exit status is 1 when any file was rejected.

package ledger

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/importer"
	"github.com/jpl-au/sopstory/internal/log"
)

func (e *Extension) newImportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <path>",
		Short: "Publish story files from the filesystem",
		Long: `Publish a story file, or every .json, .yaml and .yml file under a directory.

Each file goes through the full publish pipeline. Files that fail validation
are reported and skipped; the rest are published.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runImport,
	}
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "List files without publishing")
	c.Flags().Bool(extension.FlagIncludeHidden, false, "Include hidden files and directories")
	c.Flags().Bool(extension.FlagCheckFiles, false, "Check referenced files exist")
	return c
}

func (e *Extension) runImport(c *cobra.Command, args []string) error {
	ctx := c.Context()
	src := args[0]
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)
	hidden, _ := c.Flags().GetBool(extension.FlagIncludeHidden)
	checkFiles, _ := c.Flags().GetBool(extension.FlagCheckFiles)

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := importer.Run(ctx, w, e.svc, src, importer.Options{
		Hidden:     hidden,
		DryRun:     dryRun,
		CheckFiles: checkFiles,
		Author:     cmd.Author(),
		Msg:        cmd.Message(),
	})

	log.Event("ledger:import", "import").
		Author(cmd.Author()).
		File(src).
		Detail("published", result.Published).
		Detail("rejected", result.Rejected).
		Detail("dry_run", dryRun).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("import %q: %w", src, err))
	}
	if err := cmd.PrintJSON(result); err != nil {
		return err
	}
	if result.Rejected > 0 {
		return &cmd.ExitError{Code: 1}
	}
	return nil
}
