// Package extension provides the plugin architecture for sopstory.
// Extensions group related commands and MCP tools and register at init
// time, so a feature can be added or left out of a build without touching
// the command core.
package extension

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// Extension defines the contract for sopstory extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions can perform setup (migrations, etc).
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Storeless is an optional interface for extensions with commands that
// don't require a ledger. Commands returned by NoStoreCommands() will not
// trigger ledger discovery in PersistentPreRunE.
//
// Use cases:
//  1. Authoring commands (validate, normalise, convert, build) that work on
//     loose files
//  2. Commands that manage their own service lifecycle (serve, vacuum)
//  3. Utility commands (version)
type Storeless interface {
	NoStoreCommands() []string
}

// Vacuumable extensions can clean up their own retired data. The vacuum
// command calls Vacuum on every extension implementing this interface after
// vacuuming the stories table.
type Vacuumable interface {
	Extension
	// Vacuum permanently deletes retired records older than olderThan, or
	// all of them when olderThan is nil. Returns the count removed.
	Vacuum(ctx Context, olderThan *time.Duration) (int64, error)
}

// MCPTool is a tool an extension adds to the MCP server.
type MCPTool struct {
	Tool    mcp.Tool
	Handler MCPHandler
}

// MCPHandler serves one tool call. extCtx is nil until the server has a
// ledger; handlers that need one return an error result.
type MCPHandler func(ctx context.Context, extCtx Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
