package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
	"github.com/jpl-au/sopstory/internal/validate"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512B", humanSize(512))
	assert.Equal(t, "1.5K", humanSize(1536))
	assert.Equal(t, "2.0M", humanSize(2<<20))
}

func TestList(t *testing.T) {
	del := int64(1)
	var buf bytes.Buffer
	require.NoError(t, List(&buf, []store.Meta{{Story: "A"}, {Story: "B", DeletedAt: &del}}))
	assert.Equal(t, "A\nB [retired]\n", buf.String())
}

func TestLong(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Long(&buf, []store.Meta{{Story: "SOP-1", Version: 3, Steps: 12, Size: 2048, Title: "Reset"}}))
	out := buf.String()
	for _, want := range []string{"STORY", "SOP-1", "v3", "12", "2.0K", "Reset"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, Long(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestHistoryDiff(t *testing.T) {
	v1 := `{"sop_id":"S","start_code":"A","frames":[{"frame_code":"A","title":"One"}]}`
	v2 := `{"sop_id":"S","start_code":"A","frames":[{"frame_code":"A","title":"Two"},{"frame_code":"B"}]}`
	var buf bytes.Buffer
	require.NoError(t, HistoryDiff(&buf, []store.Version{
		{Version: 2, Content: v2, Author: "dana", Message: "add B"},
		{Version: 1, Content: v1},
	}, false))
	out := buf.String()
	assert.Contains(t, out, "=== v1 -> v2")
	assert.Contains(t, out, "Message: add B")
	assert.Contains(t, out, "added: B\n")
	assert.Contains(t, out, "changed: A\n")
}

func TestChangesAndFixes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Changes(&buf, nil))
	assert.Equal(t, "no changes\n", buf.String())

	buf.Reset()
	require.NoError(t, Changes(&buf, []story.Change{{Step: "A", Field: "image", Before: "/outputs/a.png", After: "../a.png", Rule: "rooted-staging"}}))
	assert.Equal(t, "A.image: \"/outputs/a.png\" -> \"../a.png\"  (rooted-staging)\n", buf.String())

	buf.Reset()
	require.NoError(t, Fixes(&buf, []textfix.Fix{{Step: "A", Field: "title", Before: "x_x000B_y", After: "x y"}}))
	assert.Equal(t, "A.title: \"x_x000B_y\" -> \"x y\"\n", buf.String())
}

func testReport() *validate.Report {
	return &validate.Report{
		Errors:   []string{"Frame B: choice[0] points to missing frame_code: Z"},
		Warnings: []string{"Frame C is unreachable | check"},
		Issues: []validate.Issue{
			{Severity: validate.SeverityError, Code: validate.CodeDanglingTransition, Step: "B", Message: "Frame B: choice[0] points to missing frame_code: Z"},
			{Severity: validate.SeverityWarning, Code: validate.CodeUnreachable, Step: "C", Message: "Frame C is unreachable | check"},
		},
	}
}

func TestReport(t *testing.T) {
	d := story.New("SOP-1", "A", []story.Step{{ID: "A"}, {ID: "B"}, {ID: "C"}})
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, Summary{Source: "s.json", Doc: d}, testReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "File:   s.json\nStory:  SOP-1\nStart:  A\nSteps:  3\n\n"))
	assert.Contains(t, out, "WARNINGS:\n - Frame C is unreachable")
	assert.Contains(t, out, "ERRORS:\n - Frame B: choice[0]")
	assert.True(t, strings.HasSuffix(out, "FAIL: 1 error, 1 warning\n"))
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "OK: validation passed", Verdict(&validate.Report{}))
	assert.Equal(t, "OK: validation passed with 2 warnings", Verdict(&validate.Report{Warnings: []string{"a", "b"}}))
	assert.Equal(t, "FAIL: document could not be read", Verdict(&validate.Report{Structural: true, Errors: []string{"x"}}))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(Summary{Doc: story.New("SOP-1", "A", nil)}, testReport())
	assert.Contains(t, md, "# SOP-1\n")
	assert.Contains(t, md, "## Errors\n")
	assert.Contains(t, md, "| dangling-transition | B |")
	assert.Contains(t, md, `unreachable \| check`)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, md, false))
	assert.Equal(t, md, buf.String())
}
