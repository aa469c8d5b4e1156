// tools_init.go implements the MCP tool for creating a ledger.
//
// This tool works without an existing ledger, allowing LLMs to bootstrap
// a sopstory project. Ledger tools require initialisation first.

package mcp

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/repo"
)

// initLedger handles sopstory_init tool calls.
func (h *handlers) initLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	if h.svc != nil {
		return mcp.NewToolResultError("ledger already initialised"), nil
	}

	local := getBool(req, "local", false)

	// An explicit ledger path lives at <dir>/.sopstory/sopstory.db.
	var dir string
	if h.db != "" {
		dir = filepath.Dir(filepath.Dir(h.db))
	}
	dbPath, err := document.Init(repo.InitOptions{Dir: dir, Local: local})

	log.Event("mcp:init", "init").Author("mcp").Detail("local", local).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := document.New(dbPath)
	if err != nil {
		return mcp.NewToolResultError("init succeeded but failed to open ledger: " + err.Error()), nil
	}
	if err := h.attach(svc); err != nil {
		_ = svc.Close()
		return mcp.NewToolResultError("init succeeded but extensions failed: " + err.Error()), nil
	}

	slog.Info("ledger initialised", "path", dbPath, "local", local)

	if local {
		return mcp.NewToolResultText("ledger initialised (local - gitignored)"), nil
	}
	return mcp.NewToolResultText("ledger initialised"), nil
}
