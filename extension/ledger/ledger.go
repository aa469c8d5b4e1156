// Package ledger provides the ledger extension: publishing stories and
// reading back what was published.
// Registers commands: publish, import, export, ls, cat, history, diff, rm,
// restore, revert.
//
// Each command file is separated to isolate its flag handling and output
// formatting logic. The work itself lives in the internal runner packages
// so the MCP server and tests can reach it without cobra.

package ledger

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the ledger extension.
type Extension struct {
	svc service.Service
	cfg *config.Config
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "ledger".
func (e *Extension) Name() string { return "ledger" }

// Init connects to the shared service.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	e.cfg = ctx.Config()
	return nil
}

// Commands returns the ledger commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newPublishCmd(),
		e.newImportCmd(),
		e.newExportCmd(),
		e.newLsCmd(),
		e.newCatCmd(),
		e.newHistoryCmd(),
		e.newDiffCmd(),
		e.newRmCmd(),
		e.newRestoreCmd(),
		e.newRevertCmd(),
	}
}

// MCPTools returns nil - ledger MCP tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
