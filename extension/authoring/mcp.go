// mcp.go implements the sopstory_fix_text MCP tool.
//
// Text repair needs no ledger, so the handler ignores the extension
// context and works on the content it is given.

package authoring

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
)

// fixTextOutput is the tool result: the repaired story and what changed.
type fixTextOutput struct {
	Story json.RawMessage `json:"story"`
	Fixes []textfix.Fix   `json:"fixes"`
}

func fixTextTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("sopstory_fix_text",
			mcp.WithDescription("Repair mis-encoded text (mojibake, _x000B_) in every text field of a story and return the repaired story with the list of fixes"),
			mcp.WithString("content", mcp.Description("Story JSON (or YAML when format is yaml)")),
			mcp.WithString("path", mcp.Description("Story file on disk")),
			mcp.WithString("format", mcp.Description("json (default) or yaml, for content")),
		),
		Handler: fixText,
	}
}

func fixText(_ context.Context, _ extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := "story.json"
	var data []byte
	if p, err := req.RequireString("path"); err == nil && p != "" {
		if data, err = os.ReadFile(p); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		source = p
	} else {
		content, err := req.RequireString("content")
		if err != nil || content == "" {
			return mcp.NewToolResultError("content or path is required"), nil
		}
		if f, _ := req.RequireString("format"); f == "yaml" {
			source = "story.yaml"
		}
		data = []byte(content)
	}

	l := log.Event("mcp:fix-text", "fix").Author("mcp").File(source)

	d, err := document.Decode(data, source)
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	fixes := textfix.Document(d)
	out, err := story.Encode(d)
	l.Story(d.ID).Detail("fixes", len(fixes)).Write(err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := json.MarshalIndent(fixTextOutput{Story: out, Fixes: nonNilFixes(fixes)}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
