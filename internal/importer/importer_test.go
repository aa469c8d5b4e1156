package importer_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/importer"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/service"
)

func setup(t *testing.T) service.Service {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	_, err := document.Init(repo.InitOptions{})
	require.NoError(t, err)
	svc, err := document.New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func writeStories(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.json":         `{"sop_id":"A-1","start_code":"S","frames":[{"frame_code":"S","title":"Go"}]}`,
		"nested/b.yaml":  "sop_id: B-1\nstart_code: S\nframes:\n  - frame_code: S\n    title: Go\n",
		"c.json":         `{"sop_id":"C-1","start_code":"X","frames":[{"frame_code":"S"}]}`,
		"notes.txt":      "not a story",
		".hidden/d.json": `{"sop_id":"D-1","start_code":"S","frames":[{"frame_code":"S"}]}`,
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func TestRun_Directory(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	dir := writeStories(t)

	var buf bytes.Buffer
	res, err := importer.Run(ctx, &buf, svc, dir, importer.Options{Author: "tester", Msg: "bulk"})
	require.NoError(t, err)
	require.Len(t, res.Files, 3, "hidden and non-story files skipped")
	assert.Equal(t, 2, res.Published)
	assert.Equal(t, 1, res.Rejected)

	assert.Equal(t, "A-1", res.Files[0].Story)
	assert.Equal(t, importer.StatusRejected, res.Files[1].Status)
	assert.Contains(t, res.Files[1].Reason, "X")
	assert.Equal(t, "B-1", res.Files[2].Story)

	v, err := svc.Latest(ctx, "B-1", false)
	require.NoError(t, err)
	assert.Equal(t, "bulk", v.Message)

	buf.Reset()
	res, err = importer.Run(ctx, &buf, svc, dir, importer.Options{Author: "tester"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Published)
	assert.Equal(t, importer.StatusUnchanged, res.Files[0].Status)
	assert.Contains(t, buf.String(), "Unchanged:")
}

func TestRun_DryRunAndSingleFile(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	dir := writeStories(t)

	var buf bytes.Buffer
	res, err := importer.Run(ctx, &buf, svc, dir, importer.Options{DryRun: true, Hidden: true})
	require.NoError(t, err)
	assert.Len(t, res.Files, 4)
	n, err := svc.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	res, err = importer.Run(ctx, &buf, svc, filepath.Join(dir, "a.json"), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	_, err = importer.Run(ctx, &buf, svc, filepath.Join(dir, "missing"), importer.Options{})
	assert.Error(t, err)
}
