// tools_story.go implements MCP tools that work on loose story content.
//
// Separated from tools_ledger.go because these tools need no ledger. They
// run the same pipeline as the validate and normalise commands, so an LLM
// editing a story gets exactly the report the CLI would print.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// validateResult is the sopstory_validate response.
type validateResult struct {
	OK       bool            `json:"ok"`
	ExitCode int             `json:"exit_code"`
	Report   *validate.Report `json:"report"`
	Changes  []story.Change  `json:"changes,omitempty"`
}

// normaliseResult is the sopstory_normalise response.
type normaliseResult struct {
	Story   json.RawMessage `json:"story"`
	Changes []story.Change  `json:"changes"`
}

// loadConfig returns the running service's configuration, or loads it when no
// ledger is open.
func (h *handlers) loadConfig() (*config.Config, error) {
	if h.svc != nil {
		return h.svc.Config(), nil
	}
	return config.Load()
}

// validateStory handles sopstory_validate tool calls.
func (h *handlers) validateStory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, source, err := storyInput(req)
	l := log.Event("mcp:validate", "validate").Author("mcp").File(source)
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := h.loadConfig()
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := document.Check(ctx, cfg, data, service.CheckOptions{
		Source:       source,
		Output:       getString(req, "output", ""),
		CheckFiles:   getBool(req, "check_files", false),
		Reachability: getBool(req, "reachability", false),
	})
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.Document != nil {
		l.Story(out.Document.ID)
	}
	l.Findings(len(out.Report.Errors), len(out.Report.Warnings)).Write(nil)

	return jsonResult(validateResult{
		OK:       out.Report.OK(),
		ExitCode: out.Report.ExitCode(),
		Report:   out.Report,
		Changes:  out.Changes,
	})
}

// normaliseStory handles sopstory_normalise tool calls. A document that
// cannot be modelled is an error; content defects are not, normalisation
// never fails on them.
func (h *handlers) normaliseStory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, source, err := storyInput(req)
	l := log.Event("mcp:normalise", "normalise").Author("mcp").File(source)
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := h.loadConfig()
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := document.Check(ctx, cfg, data, service.CheckOptions{
		Source: source,
		Base:   getString(req, "base", ""),
		Output: getString(req, "output", ""),
	})
	if err == nil && out.Document == nil {
		err = errStructural(out.Report)
	}
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	l.Story(out.Document.ID).Detail("changes", len(out.Changes)).Write(nil)

	changes := out.Changes
	if changes == nil {
		changes = []story.Change{}
	}
	return jsonResult(normaliseResult{Story: out.Content, Changes: changes})
}

// publishResult is the sopstory_publish response.
type publishResult struct {
	Published bool             `json:"published"`
	Story     string           `json:"story,omitempty"`
	Result    *store.Result    `json:"result,omitempty"`
	Report    *validate.Report `json:"report"`
	Changes   []story.Change   `json:"changes,omitempty"`
}

// publishStory handles sopstory_publish tool calls. A story with validation
// errors is not an MCP error: the report comes back with published=false so
// the LLM can fix the defects and retry.
func (h *handlers) publishStory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.requireInit(); err != nil {
		return err, nil
	}

	author, err := req.RequireString("author")
	if err != nil || author == "" {
		return mcp.NewToolResultError("author is required"), nil //nolint:nilerr
	}
	message := getString(req, "message", "")

	data, source, err := storyInput(req)
	l := log.Event("mcp:publish", "publish").Author(author).File(source)
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := h.svc.Publish(ctx, data, service.PublishOptions{
		CheckOptions: service.CheckOptions{
			Source:     source,
			CheckFiles: getBool(req, "check_files", false),
		},
		Author:  author,
		Message: message,
	})
	if out != nil && out.Document != nil {
		l.Story(out.Document.ID)
	}
	if out != nil && out.Report != nil {
		l.Findings(len(out.Report.Errors), len(out.Report.Warnings))
	}
	if err != nil && !errors.Is(err, validate.ErrNotPublishable) {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		l.Write(err)
		return jsonResult(publishResult{Report: out.Report, Changes: out.Changes})
	}
	l.ResultVersion(out.Result.Version).Detail("created", out.Result.Created).Write(nil)

	return jsonResult(publishResult{
		Published: out.Result.Created,
		Story:     out.Document.ID,
		Result:    out.Result,
		Report:    out.Report,
		Changes:   out.Changes,
	})
}

// errStructural turns a structural report into an error listing its
// findings.
func errStructural(r *validate.Report) error {
	return fmt.Errorf("story cannot be read: %s", strings.Join(r.Errors, "; "))
}
