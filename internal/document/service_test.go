package document_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/validate"
)

const storyV1 = `{"sop_id":"SOP-7","start_code":"A","frames":[
 {"frame_code":"A","title":"Start","image":"/outputs/images/SOP-7/A.png",
  "choices":[{"to":"B","label":"Next"}],"FAQ_Loc":"/outputs/faq/","FAQ_File":"a.html"},
 {"frame_code":"B","title":"Done"}]}`

const storyV2 = `{"sop_id":"SOP-7","start_code":"A","frames":[
 {"frame_code":"A","title":"Start","choices":[{"to":"C"}]},
 {"frame_code":"C","title":"Finish"}]}`

const storyBroken = `{"sop_id":"SOP-7","start_code":"Z","frames":[
 {"frame_code":"A","title":"Start","choices":[{"to":"B"}]}]}`

// setupService creates a ledger in a temporary project with an isolated
// home directory and returns a service bound to it.
func setupService(t *testing.T) *document.Service {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	dbPath, err := document.Init(repo.InitOptions{})
	require.NoError(t, err, "init ledger")

	svc, err := document.New("")
	require.NoError(t, err, "open service")
	t.Cleanup(func() { _ = svc.Close() })

	got, err := filepath.EvalSymlinks(svc.DBPath())
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dbPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	return svc
}

func publish(t *testing.T, svc service.Service, data, msg string) *service.Outcome {
	t.Helper()
	out, err := svc.Publish(context.Background(), []byte(data), service.PublishOptions{
		CheckOptions: service.CheckOptions{Source: "story.json"},
		Author:       "tester",
		Message:      msg,
	})
	require.NoError(t, err)
	return out
}

func TestService_PublishRead(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	out := publish(t, svc, storyV1, "first")
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Created)
	assert.Equal(t, 1, out.Result.Version)
	assert.NotEmpty(t, out.Changes, "references normalised before storing")

	v, err := svc.Latest(ctx, "SOP-7", false)
	require.NoError(t, err)
	assert.Equal(t, "tester", v.Author)
	assert.Equal(t, "first", v.Message)
	assert.Equal(t, 2, v.Steps)
	assert.Equal(t, string(out.Content), v.Content)
	assert.Contains(t, v.Content, `"../images/SOP-7/A.png"`)
	assert.Contains(t, v.Content, `"FAQ_Loc": "faq"`)

	d, err := svc.Document(v)
	require.NoError(t, err)
	assert.Equal(t, "A", d.StartID)

	byKey, err := svc.Resolve(ctx, v.Key, false)
	require.NoError(t, err)
	assert.Equal(t, v.Version, byKey.Version)

	metas, err := svc.List(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "SOP-7", metas[0].Story)
}

func TestService_PublishIdenticalIsNoop(t *testing.T) {
	svc := setupService(t)
	first := publish(t, svc, storyV1, "first")
	again := publish(t, svc, storyV1, "again")

	assert.False(t, again.Result.Created)
	assert.Equal(t, first.Result.Key, again.Result.Key)

	hist, err := svc.History(context.Background(), "SOP-7", 0, false)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestService_PublishRejectsErrors(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	out, err := svc.Publish(ctx, []byte(storyBroken), service.PublishOptions{})
	require.ErrorIs(t, err, validate.ErrNotPublishable)
	require.NotNil(t, out)
	assert.Len(t, out.Report.Errors, 2, "missing start and dangling transition")
	assert.Nil(t, out.Result)

	ok, err := svc.Exists(ctx, "SOP-7")
	require.NoError(t, err)
	assert.False(t, ok, "nothing stored")

	out, err = svc.Publish(ctx, []byte(`{"frames":[]}`), service.PublishOptions{})
	require.ErrorIs(t, err, validate.ErrNotPublishable)
	assert.True(t, out.Report.Structural)
	assert.Nil(t, out.Document)
}

func TestService_DiffVersions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	publish(t, svc, storyV1, "v1")
	publish(t, svc, storyV2, "v2")

	r, err := svc.Diff(ctx, "SOP-7", diff.Options{})
	require.NoError(t, err)
	assert.Equal(t, "SOP-7 v1", r.Old)
	assert.Equal(t, "SOP-7 v2", r.New)
	assert.Equal(t, []string{"C"}, r.Steps.Added)
	assert.Equal(t, []string{"B"}, r.Steps.Removed)
	assert.Equal(t, []string{"A"}, r.Steps.Changed)

	r, err = svc.Diff(ctx, "SOP-7", diff.Options{Version1: 2, Version2: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, r.Steps.Added)

	_, err = svc.Diff(ctx, "missing", diff.Options{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_DiffWorkingFile(t *testing.T) {
	svc := setupService(t)
	publish(t, svc, storyV1, "v1")

	p := filepath.Join(t.TempDir(), "story.json")
	require.NoError(t, os.WriteFile(p, []byte(storyV1), 0644))

	r, err := svc.Diff(context.Background(), "SOP-7", diff.Options{File: p})
	require.NoError(t, err)
	assert.True(t, r.Steps.Empty(), "working file normalises to the stored version")
	assert.Equal(t, "SOP-7 (v1)", r.Old)
}

func TestService_RetireRestore(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	publish(t, svc, storyV1, "v1")

	require.NoError(t, svc.Delete(ctx, "SOP-7"))
	_, err := svc.Latest(ctx, "SOP-7", false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Publish(ctx, []byte(storyV2), service.PublishOptions{})
	assert.ErrorIs(t, err, store.ErrRetired)

	require.NoError(t, svc.Restore(ctx, "SOP-7"))
	n, err := svc.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.Delete(ctx, "SOP-7"))
	removed, err := svc.Vacuum(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

// recorder captures events fired by the service.
type recorder struct {
	events []extension.Event
}

func (r *recorder) Name() string                         { return "recorder" }
func (r *recorder) Commands() []*cobra.Command           { return nil }
func (r *recorder) MCPTools() []extension.MCPTool        { return nil }
func (r *recorder) HandleEvent(_ extension.Context, e extension.Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestService_Events(t *testing.T) {
	svc := setupService(t)
	rec := &recorder{}
	extension.Register(rec)
	svc.SetExtensionContext(extension.NewContext(svc, svc.DB(), svc.Config()))

	publish(t, svc, storyV1, "v1")
	publish(t, svc, storyV1, "noop")
	require.NoError(t, svc.Delete(context.Background(), "SOP-7"))

	require.Len(t, rec.events, 2, "identical publish fires nothing")
	pub, ok := rec.events[0].(extension.StoryPublishEvent)
	require.True(t, ok)
	assert.Equal(t, 1, pub.Version)
	assert.Equal(t, extension.EventStoryRetire, rec.events[1].EventType())
}

func TestCheck_Options(t *testing.T) {
	f := true
	cfg := &config.Config{Check: config.Check{Files: &f}}
	ctx := context.Background()

	out, err := document.Check(ctx, cfg, []byte(storyV1), service.CheckOptions{
		Output: "site/outputs/players/v2/SOP-7_player.html",
	})
	require.NoError(t, err)
	assert.Contains(t, string(out.Content), `"../../images/SOP-7/A.png"`)
	require.NotEmpty(t, out.Report.Errors, "image does not exist on disk")
	assert.True(t, strings.Contains(out.Report.Errors[0], "A.png"))

	out, err = document.Check(ctx, nil, []byte("sop_id: Y\nstart_code: A\nframes:\n  - frame_code: A\n"), service.CheckOptions{
		Source:     "story.yaml",
		SkipNormal: true,
	})
	require.NoError(t, err)
	assert.True(t, out.Report.OK())
	assert.Equal(t, "Y", out.Document.ID)
}

func TestCheck_FilesOnDisk(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, f := range []string{"outputs/images/SOP-7/A.png", "outputs/faq/a.html"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), 0755))
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	}
	ctx := context.Background()

	out, err := document.Check(ctx, nil, []byte(storyV1), service.CheckOptions{CheckFiles: true})
	require.NoError(t, err)
	assert.Empty(t, out.Report.Errors)
	assert.Empty(t, out.Report.Warnings)

	out, err = document.Check(ctx, nil, []byte(storyV1), service.CheckOptions{CheckFiles: true, SkipNormal: true})
	require.NoError(t, err)
	assert.Len(t, out.Report.Errors, 1, "raw staging refs miss under the players directory")
}

func TestPathOptions(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "..", document.PathOptions(cfg, service.CheckOptions{}).Base)
	assert.Equal(t, "../..", document.PathOptions(cfg, service.CheckOptions{Output: "outputs/players/x/p.html"}).Base)
	assert.Equal(t, ".", document.PathOptions(cfg, service.CheckOptions{Base: ".", Output: "outputs/players/x/p.html"}).Base)

	cfg.Paths.Base = "/site"
	assert.Equal(t, "/site", document.PathOptions(cfg, service.CheckOptions{Output: "outputs/players/x/p.html"}).Base)
}
