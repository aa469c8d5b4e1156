package vacuum_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/repo"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/vacuum"
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

	ctx := context.Background()
	for _, id := range []string{"SOP-1", "SOP-2"} {
		data := `{"sop_id":"` + id + `","start_code":"A","frames":[{"frame_code":"A"}]}`
		_, err := svc.Publish(ctx, []byte(data), service.PublishOptions{Author: "tester"})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, "SOP-1"))
	return svc
}

func TestRun_DryRun(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var buf bytes.Buffer
	res, err := vacuum.Run(ctx, &buf, svc, vacuum.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-1"}, res.Stories)
	assert.Contains(t, buf.String(), "Would delete: SOP-1")

	// Nothing retired more than a day ago.
	day := 24 * time.Hour
	buf.Reset()
	res, err = vacuum.Run(ctx, &buf, svc, vacuum.Options{DryRun: true, OlderThan: &day})
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)

	_, err = svc.Latest(ctx, "SOP-1", true)
	assert.NoError(t, err, "dry run removes nothing")
}

func TestRun(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var buf bytes.Buffer
	res, err := vacuum.Run(ctx, &buf, svc, vacuum.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, "Vacuumed 1 version(s)\n", buf.String())

	_, err = svc.Latest(ctx, "SOP-1", true)
	assert.Error(t, err)
	ok, err := svc.Exists(ctx, "SOP-2")
	require.NoError(t, err)
	assert.True(t, ok)
}
