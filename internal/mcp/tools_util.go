// tools_util.go provides helper functions for MCP tool parameter extraction.
//
// Separated to centralise the boilerplate of extracting typed parameters from
// MCP's generic argument map. These helpers provide safe defaults when
// optional parameters are missing.
//
// Design: Extraction is permissive (return default on error) rather than
// strict. An LLM omitting an optional parameter, or passing "true" as a
// string, gets the default instead of a type error it may not interpret.

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
)

// getString extracts a string parameter, returning def when it is missing
// or not a string.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool extracts a boolean parameter. JSON booleans decode as Go bool
// values, so a type assertion suffices.
func getBool(req mcp.CallToolRequest, name string, def bool) bool { //nolint:unparam
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// getInt extracts an integer parameter. JSON numbers decode as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int { //nolint:unparam
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

// errNoContent is returned when a story tool gets neither content nor path.
var errNoContent = errors.New("content or path is required")

// storyInput returns the story bytes and a source name whose extension
// selects the decoder. path wins over content.
func storyInput(req mcp.CallToolRequest) ([]byte, string, error) {
	if p := getString(req, "path", ""); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, p, fmt.Errorf("read %s: %w", p, err)
		}
		return data, p, nil
	}
	content := getString(req, "content", "")
	if content == "" {
		return nil, "", errNoContent
	}
	source := "story.json"
	if getString(req, "format", "") == "yaml" {
		source = "story.yaml"
	}
	return []byte(content), source, nil
}

// jsonResult serialises v as indented JSON in a text result. LLMs parse
// indented output more reliably than compact JSON.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
