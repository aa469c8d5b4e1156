package tag

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/service"
)

const story = `{"sop_id":"SOP-4","start_code":"A","frames":[{"frame_code":"A","title":"Only"}]}`

// setup opens a fresh ledger with one published story and an initialised
// extension, and captures command output.
func setup(t *testing.T) (*Extension, extension.Context, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := document.Init(repo.InitOptions{})
	require.NoError(t, err)
	svc, err := document.New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	_, err = svc.Publish(context.Background(), []byte(story), service.PublishOptions{Author: "dana"})
	require.NoError(t, err)

	ctx := extension.NewContext(svc, svc.DB(), svc.Config())
	e := &Extension{}
	require.NoError(t, e.Init(ctx))

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(os.Stdout) })
	return e, ctx, &buf
}

func run(c *cobra.Command, args ...string) error {
	c.SetArgs(args)
	c.SilenceUsage = true
	c.SilenceErrors = true
	return c.Execute()
}

func TestTagCommands(t *testing.T) {
	e, _, buf := setup(t)

	require.NoError(t, run(e.newTagCmd(), "add", "SOP-4", "Approved", "site-north"))
	assert.Equal(t, "SOP-4: approved, site-north\n", buf.String())

	buf.Reset()
	require.NoError(t, run(e.newTagCmd(), "ls", "SOP-4"))
	assert.Equal(t, "approved\nsite-north\n", buf.String())

	buf.Reset()
	require.NoError(t, run(e.newTagCmd(), "find", "approved"))
	assert.Equal(t, "SOP-4\n", buf.String())

	buf.Reset()
	require.NoError(t, run(e.newTagCmd(), "rm", "SOP-4", "site-north"))
	assert.Contains(t, buf.String(), "Removed 1 tag(s) from SOP-4")

	buf.Reset()
	require.NoError(t, run(e.newTagCmd(), "ls"))
	assert.Equal(t, "approved\t1\n", buf.String())

	assert.Error(t, run(e.newTagCmd(), "add", "SOP-404", "x"))
}

func TestVacuumPrunesVacuumedStories(t *testing.T) {
	e, ctx, _ := setup(t)
	bg := context.Background()
	require.NoError(t, e.tags.Add(bg, "SOP-4", "dana", "approved"))

	require.NoError(t, ctx.Service().Delete(bg, "SOP-4"))
	n, err := e.Vacuum(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ctx.Service().Vacuum(bg, nil, "")
	require.NoError(t, err)
	n, err = e.Vacuum(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTagTool(t *testing.T) {
	_, ctx, _ := setup(t)

	call := func(extCtx extension.Context, args map[string]any) (string, bool) {
		t.Helper()
		var req mcp.CallToolRequest
		req.Params.Arguments = args
		res, err := handleTag(context.Background(), extCtx, req)
		require.NoError(t, err)
		return res.Content[0].(mcp.TextContent).Text, res.IsError
	}

	_, isErr := call(nil, map[string]any{"action": "list", "id": "SOP-4"})
	assert.True(t, isErr, "no ledger")

	text, isErr := call(ctx, map[string]any{"action": "add", "id": "SOP-4", "tags": "approved, draft"})
	require.False(t, isErr, text)
	var got result
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, []string{"approved", "draft"}, got.Tags)

	text, isErr = call(ctx, map[string]any{"action": "find", "tags": "draft"})
	require.False(t, isErr, text)
	var stories []string
	require.NoError(t, json.Unmarshal([]byte(text), &stories))
	assert.Equal(t, []string{"SOP-4"}, stories)

	_, isErr = call(ctx, map[string]any{"action": "add", "tags": "x"})
	assert.True(t, isErr, "id required")
	_, isErr = call(ctx, map[string]any{"action": "explode"})
	assert.True(t, isErr)
}
