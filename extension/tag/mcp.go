// mcp.go implements the sopstory_tag MCP tool.

package tag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/tag"
)

func tagTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("sopstory_tag",
			mcp.WithDescription("Add, remove or list labels on a published story, or list the stories carrying a label"),
			mcp.WithString("action", mcp.Required(), mcp.Enum("add", "remove", "list", "find"), mcp.Description("add, remove, list, or find")),
			mcp.WithString("id", mcp.Description("Story id or version key (add, remove, list)")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags (add, remove) or a single tag (find)")),
			mcp.WithString("author", mcp.Description("Author attribution for add")),
		),
		Handler: handleTag,
	}
}

func handleTag(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if extCtx == nil {
		return mcp.NewToolResultError("ledger not initialised - call sopstory_init first"), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, _ := req.RequireString("id")
	raw, _ := req.RequireString("tags")
	author, _ := req.RequireString("author")
	if author == "" {
		author = "mcp"
	}
	tags := split(raw)
	store := tag.New(extCtx.DB())

	l := log.Event("mcp:tag", action).Author(author).Detail("tags", tags)

	var out any
	switch action {
	case "find":
		if len(tags) != 1 {
			err = fmt.Errorf("find takes exactly one tag")
			break
		}
		var stories []string
		stories, err = store.Stories(ctx, tags[0])
		out = nonNil(stories)
	case "add", "remove", "list":
		if id == "" {
			err = fmt.Errorf("id is required for %s", action)
			break
		}
		v, rerr := extCtx.Service().Resolve(ctx, id, true)
		if rerr != nil {
			err = rerr
			break
		}
		l.Story(v.Story)
		switch action {
		case "add":
			err = store.Add(ctx, v.Story, author, tags...)
		case "remove":
			_, err = store.Remove(ctx, v.Story, tags...)
		}
		if err == nil {
			var current []string
			current, err = store.List(ctx, v.Story)
			out = result{Story: v.Story, Action: action, Tags: nonNil(current)}
		}
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	l.Write(err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
