// Package core provides the core extension for sopstory.
// It registers commands: init, config, serve, guide, vacuum, llm, db, version.
package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/extension"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct{}

var (
	_ extension.Extension = (*Extension)(nil)
	_ extension.Storeless = (*Extension)(nil)
)

// Name returns "core" - this extension provides project management commands.
func (e *Extension) Name() string { return "core" }

// Commands returns all core CLI commands for project management.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newServeCmd(),
		newGuideCmd(),
		newVacuumCmd(),
		newLlmCmd(),
		newDBCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil - core commands have no MCP tool equivalents beyond
// those internal/mcp registers itself.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns commands that manage their own service lifecycle.
// serve: Long-running MCP server starts even without a ledger.
// vacuum: Opens the ledger itself so it can close it before exiting.
// db: Manages gitignore, doesn't need a database connection.
// llm, version: Static output.
func (e *Extension) NoStoreCommands() []string {
	return []string{"serve", "vacuum", "db", "llm", "version"}
}
