// tools_ledger.go implements MCP tools that read the publication ledger.
//
// Separated from tools_story.go because every tool here needs an open
// ledger and returns stored versions rather than pipeline reports.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/store"
)

// listStories handles sopstory_list tool calls.
func (h *handlers) listStories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	prefix := getString(req, "prefix", "")
	metas, err := h.svc.List(ctx, prefix, getBool(req, "include_deleted", false))

	log.Event("mcp:list", "list").Author("mcp").Detail("prefix", prefix).Detail("count", len(metas)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]store.MetaJSON, len(metas))
	for i := range metas {
		out[i] = metas[i].ToJSON()
	}
	return jsonResult(out)
}

// readStoryTool handles sopstory_read tool calls. The id may be a version
// key copied from history output.
func (h *handlers) readStoryTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}
	version := getInt(req, "version", 0)

	var v *store.Version
	if version > 0 {
		v, err = h.svc.Version(ctx, id, version)
	} else {
		v, err = h.svc.Resolve(ctx, id, getBool(req, "include_deleted", false))
	}

	l := log.Event("mcp:read", "read").Author("mcp").Story(id)
	if version > 0 {
		l.Version(version)
	}
	l.Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v.ToJSON(true))
}

// historyStory handles sopstory_history tool calls.
func (h *handlers) historyStory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}

	vs, err := h.svc.History(ctx, id, getInt(req, "limit", 0), getBool(req, "include_deleted", false))

	log.Event("mcp:history", "history").Author("mcp").Story(id).Detail("count", len(vs)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(vs) == 0 {
		return mcp.NewToolResultError("no versions of " + id), nil
	}

	out := make([]store.VersionJSON, len(vs))
	for i := range vs {
		out[i] = vs[i].ToJSON(false)
	}
	return jsonResult(out)
}

// diffStory handles sopstory_diff tool calls.
func (h *handlers) diffStory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}

	opts := diff.Options{
		Version1:       getInt(req, "version1", 0),
		Version2:       getInt(req, "version2", 0),
		IncludeDeleted: getBool(req, "include_deleted", false),
	}
	r, err := h.svc.Diff(ctx, id, opts)

	log.Event("mcp:diff", "diff").Author("mcp").Story(id).
		Detail("version1", opts.Version1).Detail("version2", opts.Version2).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r)
}
