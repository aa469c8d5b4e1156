// init.go implements the "sopstory init" command for project initialisation.
//
// Separated from extension.go to isolate init-specific logic. Init is special
// because it runs before a ledger exists and creates it.
//
// Design: Init does NOT create config - that's managed separately via
// "sopstory config". This follows git's model where init creates repository
// structure and config is separate. The --local flag controls whether the
// ledger is committed or gitignored.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/repo"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a sopstory project",
		Long: `Creates a .sopstory/sopstory.db ledger in the current directory.

Use --dir to create it in a different directory:
  sopstory init --dir /path/to/project

Use --local to keep the ledger out of git:
  sopstory init --local

Note: init does not create config. Use "sopstory config" to set up configuration.`,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark ledger as local (gitignored)")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	dir := cmd.Dir()

	// --local edits the current project's .gitignore; with --dir the ledger
	// lives somewhere else.
	if local && dir != "" {
		return cmd.PrintJSONError(fmt.Errorf("cannot use --local with --dir: --local modifies the current project's .gitignore, but --dir creates the ledger elsewhere"))
	}

	dbPath, err := document.Init(repo.InitOptions{Dir: dir, Force: cmd.Force(), Local: local})

	log.Event("core:init", "init").
		Author(cmd.Author()).
		File(dbPath).
		Detail("dir", dir).
		Detail("local", local).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{"ledger": dbPath, "local": local})
	}
	fmt.Fprintf(cmd.Out(), "Initialised sopstory ledger in %s\n", dbPath)
	return nil
}
