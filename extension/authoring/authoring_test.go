package authoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/internal/story"
)

const goodStory = `{"sop_id":"SOP-3","start_code":"A","frames":[
 {"frame_code":"A","title":"Donâ€™t panic","image":"/outputs/images/SOP-3/A.png","choices":[{"to":"B","label":"Next"}]},
 {"frame_code":"B","title":"Done"}]}`

const badStory = `{"sop_id":"SOP-3","start_code":"A","frames":[
 {"frame_code":"A","title":"Start","choices":[{"to":"Z"}]}]}`

// setup isolates config lookup and captures command output.
func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(os.Stdout) })
	return &buf
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	return name
}

func run(c *cobra.Command, args ...string) error {
	c.SetArgs(args)
	c.SilenceUsage = true
	c.SilenceErrors = true
	return c.Execute()
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *cmd.ExitError
	require.True(t, errors.As(err, &ee), "want ExitError, got %v", err)
	return ee.Code
}

func TestValidate_ExitCodes(t *testing.T) {
	out := setup(t)
	e := &Extension{}

	writeFile(t, "good.json", goodStory)
	writeFile(t, "bad.json", badStory)
	writeFile(t, "broken.json", `{"frames":[`)

	tests := []struct {
		file string
		code int
		want string
	}{
		{"good.json", 0, "OK: validation passed"},
		{"bad.json", 1, "FAIL: 1 error"},
		{"broken.json", 2, "document could not be read"},
		{"missing.json", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			out.Reset()
			err := run(e.newValidateCmd(), tt.file)
			assert.Equal(t, tt.code, exitCode(t, err))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestNormalise_Destinations(t *testing.T) {
	out := setup(t)
	e := &Extension{}
	writeFile(t, "story.json", goodStory)

	require.NoError(t, run(e.newNormaliseCmd(), "--base", "../..", "story.json"))
	assert.Contains(t, out.String(), `"../../images/SOP-3/A.png"`)

	out.Reset()
	require.NoError(t, run(e.newNormaliseCmd(), "--out", "norm/story.yaml", "story.json"))
	assert.Contains(t, out.String(), "images/SOP-3/A.png")
	d, err := story.Load("norm/story.yaml")
	require.NoError(t, err)
	assert.Equal(t, "../images/SOP-3/A.png", d.Steps[0].ImageRef)

	raw, err := os.ReadFile("story.json")
	require.NoError(t, err)
	assert.Equal(t, goodStory, string(raw), "input untouched without --in-place")

	err = run(e.newNormaliseCmd(), "-i", "--out", "x.json", "story.json")
	assert.Error(t, err)
}

func TestFixText_InPlace(t *testing.T) {
	out := setup(t)
	e := &Extension{}
	writeFile(t, "story.json", goodStory)

	require.NoError(t, run(e.newFixTextCmd(), "-n", "story.json"))
	assert.Contains(t, out.String(), "Don’t panic")
	raw, _ := os.ReadFile("story.json")
	assert.Equal(t, goodStory, string(raw), "dry run writes nothing")

	out.Reset()
	require.NoError(t, run(e.newFixTextCmd(), "-i", "story.json"))
	d, err := story.Load("story.json")
	require.NoError(t, err)
	assert.Equal(t, "Don’t panic", d.Steps[0].Title)
}

func TestConvert_CSV(t *testing.T) {
	out := setup(t)
	e := &Extension{}
	writeFile(t, "SOP-5.csv", "Code,Title,SOP_path,Image_sub_url,Next1_Code,Start_Here\n"+
		"A,Begin,outputs/images/SOP-5,a.png,B,\n"+
		"B,Finish,outputs/images/SOP-5,b.png,,yes\n")

	require.NoError(t, run(e.newConvertCmd(), "--out", "SOP-5.json", "SOP-5.csv"))
	assert.Contains(t, out.String(), "Wrote SOP-5.json with 2 steps. Start=B")

	d, err := story.Load("SOP-5.json")
	require.NoError(t, err)
	assert.Equal(t, "SOP-5", d.ID)
	assert.Equal(t, "B", d.StartID)
	assert.Equal(t, "../images/SOP-5/a.png", d.Steps[0].ImageRef)
}

func TestBuild_DefaultOutput(t *testing.T) {
	out := setup(t)
	e := &Extension{}
	writeFile(t, "story.json", goodStory)

	require.NoError(t, run(e.newBuildCmd(), "story.json"))
	dest := filepath.Join("outputs", "players", "SOP-3_player.html")
	assert.Contains(t, out.String(), "Wrote "+dest)

	html, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(html), "../images/SOP-3/A.png")
}

func TestFixTextTool(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"content": goodStory}

	res, err := fixText(context.Background(), nil, req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text

	var got fixTextOutput
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	require.Len(t, got.Fixes, 1)
	assert.Equal(t, "A", got.Fixes[0].Step)
	assert.Contains(t, string(got.Story), "Don’t panic")

	req.Params.Arguments = map[string]any{}
	res, err = fixText(context.Background(), nil, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
