package revert_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/revert"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

const (
	v1 = `{"sop_id":"SOP-3","start_code":"A","frames":[{"frame_code":"A","title":"First"}]}`
	v2 = `{"sop_id":"SOP-3","start_code":"A","frames":[{"frame_code":"A","title":"Second"}]}`
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

	for _, data := range []string{v1, v2} {
		_, err := svc.Publish(context.Background(), []byte(data), service.PublishOptions{Author: "tester"})
		require.NoError(t, err)
	}
	return svc
}

func TestRun_ByVersion(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var buf bytes.Buffer
	res, err := revert.Run(ctx, &buf, svc, "SOP-3", 1, revert.Options{Author: "bob"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.RevertedTo)
	assert.Equal(t, 3, res.NewVersion)
	assert.Equal(t, "Revert to v1", res.Message)

	latest, err := svc.Latest(ctx, "SOP-3", false)
	require.NoError(t, err)
	assert.Contains(t, latest.Content, `"First"`)
	assert.Equal(t, "bob", latest.Author)

	buf.Reset()
	res, err = revert.Run(ctx, &buf, svc, "SOP-3", 1, revert.Options{Author: "bob"})
	require.NoError(t, err)
	assert.False(t, res.Created, "already at that content")
	assert.Contains(t, buf.String(), "nothing to revert")
}

func TestRun_ByKey(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	first, err := svc.Version(ctx, "SOP-3", 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	res, err := revert.Run(ctx, &buf, svc, first.Key, 0, revert.Options{Author: "bob", Message: "undo"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RevertedTo)
	assert.Equal(t, "undo", res.Message)
}

func TestRun_Errors(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	var buf bytes.Buffer

	_, err := revert.Run(ctx, &buf, svc, "SOP-3", 0, revert.Options{})
	assert.ErrorIs(t, err, revert.ErrVersionRequired)

	_, err = revert.Run(ctx, &buf, svc, "SOP-3", 9, revert.Options{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = revert.Run(ctx, &buf, svc, "nothing", 0, revert.Options{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "SOP-3"))
	_, err = revert.Run(ctx, &buf, svc, "SOP-3", 1, revert.Options{})
	assert.ErrorIs(t, err, store.ErrRetired)
}
