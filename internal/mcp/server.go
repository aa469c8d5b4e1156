// Package mcp implements the Model Context Protocol server, exposing
// sopstory operations to LLMs: validating and normalising stories, publishing
// them to the ledger, and reading back what was published.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrNotInitialised is returned by ledger tools when no ledger exists.
// The LLM should call sopstory_init to create one first.
const ErrNotInitialised = "ledger not initialised - call sopstory_init first"

// Serve starts the MCP server over stdio. dbPath selects the ledger; empty
// discovers it from the working directory.
//
// Design: The server starts even when no ledger exists. Validation and
// normalisation work on loose content, and sopstory_init can create the
// ledger; only ledger tools return ErrNotInitialised.
func Serve(dbPath string) error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{db: dbPath}

	svc, err := document.New(dbPath)
	if err != nil && !errors.Is(err, repo.ErrNotInitialised) {
		slog.Error("failed to open ledger", "error", err)
		return err
	}
	if err == nil {
		defer svc.Close()
		if err := h.attach(svc); err != nil {
			slog.Error("failed to initialise extensions", "error", err)
			return err
		}
	} else {
		slog.Info("sopstory not initialised, ledger tools disabled until sopstory_init is called")
	}

	s := newServer(h)
	slog.Info("sopstory MCP server ready", "version", Version, "transport", "stdio")

	err = server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// newServer builds the MCP server with every resource and tool registered.
func newServer(h *handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"sopstory",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	registerExtensionTools(s, h)
	return s
}

// handlers provides MCP request handlers with access to the ledger.
// The svc field is nil until a ledger exists.
type handlers struct {
	db  string            // ledger path for init; empty for the working directory
	svc *document.Service // nil if not initialised
	ext extension.Context // nil if not initialised
}

// attach binds an open ledger, routes its events to extensions and lets
// extensions with their own tables migrate them.
func (h *handlers) attach(svc *document.Service) error {
	ext := extension.NewContext(svc, svc.DB(), svc.Config())
	if err := extension.InitAll(ext); err != nil {
		return err
	}
	h.svc = svc
	h.ext = ext
	svc.SetExtensionContext(ext)
	return nil
}

// requireInit returns an error result if the ledger is not initialised.
func (h *handlers) requireInit() *mcp.CallToolResult {
	if h.svc == nil {
		return mcp.NewToolResultError(ErrNotInitialised)
	}
	return nil
}

// registerResources adds URI-based access to published stories.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			storyURIPrefix+"{id}",
			"Story",
			mcp.WithTemplateDescription("Latest published version of a story"),
			mcp.WithTemplateMIMEType(storyMIME),
		),
		h.readStory,
	)
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			storyURIPrefix+"{id}/v/{version}",
			"Story Version",
			mcp.WithTemplateDescription("A specific published version of a story"),
			mcp.WithTemplateMIMEType(storyMIME),
		),
		h.readStory,
	)
}

// registerTools exposes sopstory operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("sopstory_init",
			mcp.WithDescription("Create a story ledger in the working directory. Call this first if ledger tools return 'ledger not initialised'."),
			mcp.WithBoolean("local", mcp.Description("If true, the ledger is gitignored (not committed)")),
		),
		h.initLedger,
	)

	s.AddTool(
		mcp.NewTool("sopstory_validate",
			mcp.WithDescription("Validate a story document and return errors and warnings. Provide either content or path."),
			mcp.WithString("content", mcp.Description("Story JSON (or YAML when format is yaml)")),
			mcp.WithString("path", mcp.Description("Story file on disk")),
			mcp.WithString("format", mcp.Description("json (default) or yaml, for content")),
			mcp.WithBoolean("check_files", mcp.Description("Check that referenced images and supplementary files exist")),
			mcp.WithBoolean("reachability", mcp.Description("Warn about steps unreachable from the start step")),
			mcp.WithString("output", mcp.Description("Player output path the reference base is derived from")),
		),
		h.validateStory,
	)

	s.AddTool(
		mcp.NewTool("sopstory_normalise",
			mcp.WithDescription("Rewrite a story's asset references into canonical base-relative form and return the result with the list of changes"),
			mcp.WithString("content", mcp.Description("Story JSON (or YAML when format is yaml)")),
			mcp.WithString("path", mcp.Description("Story file on disk")),
			mcp.WithString("format", mcp.Description("json (default) or yaml, for content")),
			mcp.WithString("base", mcp.Description("Ascent prefix, e.g. .. or ../..")),
			mcp.WithString("output", mcp.Description("Player output path the base is derived from")),
		),
		h.normaliseStory,
	)

	s.AddTool(
		mcp.NewTool("sopstory_publish",
			mcp.WithDescription("Normalise, validate and publish a story to the ledger. Nothing is stored when validation reports errors."),
			mcp.WithString("content", mcp.Description("Story JSON (or YAML when format is yaml)")),
			mcp.WithString("path", mcp.Description("Story file on disk")),
			mcp.WithString("format", mcp.Description("json (default) or yaml, for content")),
			mcp.WithString("author", mcp.Required(), mcp.Description("Author attribution")),
			mcp.WithString("message", mcp.Description("Version message")),
			mcp.WithBoolean("check_files", mcp.Description("Check that referenced files exist before publishing")),
		),
		h.publishStory,
	)

	s.AddTool(
		mcp.NewTool("sopstory_list",
			mcp.WithDescription("List published stories"),
			mcp.WithString("prefix", mcp.Description("Filter by story id prefix")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include retired stories")),
		),
		h.listStories,
	)

	s.AddTool(
		mcp.NewTool("sopstory_read",
			mcp.WithDescription("Read a published story by id or version key"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Story id or 8-char version key")),
			mcp.WithNumber("version", mcp.Description("Specific version (default: latest)")),
			mcp.WithBoolean("include_deleted", mcp.Description("Allow reading retired stories")),
		),
		h.readStoryTool,
	)

	s.AddTool(
		mcp.NewTool("sopstory_history",
			mcp.WithDescription("Version history of a published story"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Story id")),
			mcp.WithNumber("limit", mcp.Description("Maximum versions to return")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include retired versions")),
		),
		h.historyStory,
	)

	s.AddTool(
		mcp.NewTool("sopstory_diff",
			mcp.WithDescription("Compare two published versions of a story (default: latest against previous)"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Story id")),
			mcp.WithNumber("version1", mcp.Description("First version to compare")),
			mcp.WithNumber("version2", mcp.Description("Second version to compare")),
			mcp.WithBoolean("include_deleted", mcp.Description("Allow diffing retired stories")),
		),
		h.diffStory,
	)

	s.AddTool(
		mcp.NewTool("sopstory_config_get",
			mcp.WithDescription("Get a configuration value"),
			mcp.WithString("key", mcp.Description("Config key (paths.staging, check.files, ...) or empty for all")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("sopstory_config_set",
			mcp.WithDescription("Set a configuration value"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Config key (paths.staging, check.files, ...)")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
		),
		h.configSet,
	)

	s.AddTool(
		mcp.NewTool("sopstory_guide",
			mcp.WithDescription("Get help/guide content for sopstory commands"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g. 'validate', 'publish') or empty for index")),
		),
		h.getGuide,
	)
}

// registerExtensionTools adds the tools extensions contribute. Handlers get
// the extension context of the ledger open at call time, or nil.
func registerExtensionTools(s *server.MCPServer, h *handlers) {
	for _, ext := range extension.All() {
		for _, t := range ext.MCPTools() {
			handler := t.Handler
			s.AddTool(t.Tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handler(ctx, h.ext, req)
			})
		}
	}
}
