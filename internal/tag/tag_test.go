package tag_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/tag"
)

const doc = `{"sop_id":"SOP-1","start_code":"A","frames":[{"frame_code":"A"}]}`

func setup(t *testing.T) (*store.SQLiteStore, *tag.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })

	require.NoError(t, tag.Migrate(s.DB()))
	require.NoError(t, tag.Migrate(s.DB()), "migration is idempotent")
	_, err = s.Publish(context.Background(), "SOP-1", []byte(doc), store.PublishOptions{Author: "dana"})
	require.NoError(t, err)
	return s, tag.New(s.DB())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"Approved", "approved", false},
		{"  site-north ", "site-north", false},
		{"", "", true},
		{"needs review", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tag.Normalise(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, tag.ErrInvalidTag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddListRemove(t *testing.T) {
	_, tags := setup(t)
	ctx := context.Background()

	require.NoError(t, tags.Add(ctx, "SOP-1", "dana", "Approved", "site-north"))
	require.NoError(t, tags.Add(ctx, "SOP-1", "dana", "approved"), "re-adding is a no-op")

	got, err := tags.List(ctx, "SOP-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"approved", "site-north"}, got)

	stories, err := tags.Stories(ctx, "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP-1"}, stories)

	all, err := tags.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tag.Count{{Tag: "approved", Stories: 1}, {Tag: "site-north", Stories: 1}}, all)

	n, err := tags.Remove(ctx, "SOP-1", "approved", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = tags.List(ctx, "SOP-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"site-north"}, got)
}

func TestAdd_Errors(t *testing.T) {
	_, tags := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, tags.Add(ctx, "SOP-9", "dana", "x"), tag.ErrNoStory)
	assert.ErrorIs(t, tags.Add(ctx, "SOP-1", "dana"), tag.ErrInvalidTag)
	assert.ErrorIs(t, tags.Add(ctx, "SOP-1", "dana", "ok", "not ok"), tag.ErrInvalidTag)

	got, err := tags.List(ctx, "SOP-1")
	require.NoError(t, err)
	assert.Empty(t, got, "nothing stored when any tag is invalid")
}

func TestPrune(t *testing.T) {
	s, tags := setup(t)
	ctx := context.Background()
	require.NoError(t, tags.Add(ctx, "SOP-1", "dana", "approved"))

	require.NoError(t, s.Delete(ctx, "SOP-1"))
	n, err := tags.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "retired stories keep their tags")

	_, err = s.Vacuum(ctx, nil, "")
	require.NoError(t, err)
	n, err = tags.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := tags.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
