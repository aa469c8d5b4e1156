package rm_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/rm"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
)

// setupService creates a ledger in a temporary directory.
func setupService(t *testing.T) service.Service {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := document.Init(repo.InitOptions{})
	require.NoError(t, err, "init ledger")

	svc, err := document.New("")
	require.NoError(t, err, "open service")
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func publish(t *testing.T, svc service.Service, id string) {
	t.Helper()
	data := `{"sop_id":"` + id + `","start_code":"A","frames":[{"frame_code":"A","title":"Only"}]}`
	_, err := svc.Publish(context.Background(), []byte(data), service.PublishOptions{Author: "tester"})
	require.NoError(t, err)
}

func TestRun_Single(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	publish(t, svc, "SOP-1")

	var buf bytes.Buffer
	res, err := rm.Run(ctx, &buf, svc, "SOP-1", rm.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-1"}, res.Stories)
	assert.Equal(t, "Retired SOP-1\n", buf.String())

	_, err = svc.Latest(ctx, "SOP-1", false)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = rm.Run(ctx, &buf, svc, "SOP-1", rm.Options{})
	assert.Error(t, err, "already retired")
}

func TestRun_Prefix(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	publish(t, svc, "HR-1")
	publish(t, svc, "HR-2")
	publish(t, svc, "OPS-1")

	var buf bytes.Buffer
	res, err := rm.Run(ctx, &buf, svc, "HR-", rm.Options{Prefix: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"HR-1", "HR-2"}, res.Stories)

	n, err := svc.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	buf.Reset()
	res, err = rm.Run(ctx, &buf, svc, "NONE-", rm.Options{Prefix: true})
	require.NoError(t, err)
	assert.Empty(t, res.Stories)
	assert.Contains(t, buf.String(), "No stories found")
}

func TestRestore(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	publish(t, svc, "SOP-1")

	var buf bytes.Buffer
	_, err := rm.Run(ctx, &buf, svc, "SOP-1", rm.Options{})
	require.NoError(t, err)

	res, err := rm.Restore(ctx, &buf, svc, "SOP-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-1"}, res.Stories)

	ok, err := svc.Exists(ctx, "SOP-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
