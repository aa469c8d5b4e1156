package exists

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout creates outputs/{players,images/A,faq} with two files.
func layout(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, d := range []string{"outputs/players", "outputs/images/A", "outputs/faq"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outputs/images/A/S1.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outputs/faq/a.html"), []byte("faq"), 0644))
	return dir
}

func TestResolve(t *testing.T) {
	tests := []struct {
		ref, root, want string
	}{
		{"../images/A/S1.png", "outputs/players", "outputs/images/A/S1.png"},
		{"/outputs/images/a.png", ".", "outputs/images/a.png"},
		{"faq/a.html", "outputs", "outputs/faq/a.html"},
		{`images\a.png`, "", "images/a.png"},
		{"", "outputs", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.ref, tt.root), "Resolve(%q, %q)", tt.ref, tt.root)
	}
}

func TestDir(t *testing.T) {
	dir := layout(t)
	ctx := context.Background()
	players := filepath.Join(dir, "outputs", "players")

	ok, err := Dir{}.Exists(ctx, "../images/A/S1.png", players)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Dir{}.Exists(ctx, "../images/A/S2.png", players)
	require.NoError(t, err, "absence is not an error")
	assert.False(t, ok)

	ok, err = Dir{}.Exists(ctx, "../images/A", players)
	require.NoError(t, err)
	assert.False(t, ok, "directories do not count")

	ok, err = Dir{}.Exists(ctx, "../images/A/S1.png/x", players)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Dir{}.Exists(ctx, "", players)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDir_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dir{}.Exists(ctx, "a.png", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	var got []string
	f := Func(func(_ context.Context, ref, root string) (bool, error) {
		got = append(got, root+"|"+ref)
		return ref == "yes", nil
	})
	ok, err := f.Exists(context.Background(), "yes", "r")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"r|yes"}, got)
}

func TestCached(t *testing.T) {
	calls := 0
	fail := true
	inner := Func(func(_ context.Context, ref, _ string) (bool, error) {
		calls++
		if ref == "flaky" && fail {
			return false, errors.New("network down")
		}
		return ref == "a", nil
	})
	c := NewCached(inner)
	ctx := context.Background()

	for range 3 {
		ok, err := c.Exists(ctx, "a", "root")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, calls)

	ok, err := c.Exists(ctx, "a", "other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, calls, "root is part of the key")

	_, err = c.Exists(ctx, "flaky", "root")
	require.Error(t, err)
	fail = false
	_, err = c.Exists(ctx, "flaky", "root")
	require.NoError(t, err, "errors are not cached")
	assert.Equal(t, 3, c.Len())
}

func TestAFS_URL(t *testing.T) {
	a := NewAFS()
	tests := []struct {
		ref, root, want string
	}{
		{"../images/a.png", "gs://bucket/site/outputs/players", "gs://bucket/site/outputs/images/a.png"},
		{"faq/a.html", "s3://bucket/outputs/", "s3://bucket/outputs/faq/a.html"},
		{"../../../x.png", "gs://bucket/a", "gs://bucket/x.png"},
		{"/a.png", "file:///srv/site", "file:///srv/site/a.png"},
		{"", "gs://bucket", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.URL(tt.ref, tt.root), "URL(%q, %q)", tt.ref, tt.root)
	}
}

func TestAFS_Local(t *testing.T) {
	dir := layout(t)
	ctx := context.Background()
	a := NewAFS()
	players := filepath.Join(dir, "outputs", "players")

	ok, err := a.Exists(ctx, "../images/A/S1.png", players)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Exists(ctx, "../images/A/missing.png", players)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Exists(ctx, "../faq", players)
	require.NoError(t, err)
	assert.False(t, ok, "directories do not count")
}

func TestAuto(t *testing.T) {
	dir := layout(t)
	ctx := context.Background()
	var a Auto
	players := filepath.Join(dir, "outputs", "players")

	ok, err := a.Exists(ctx, "../images/A/S1.png", players)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, a.remote, "local roots never start the storage service")

	ok, err = a.Exists(ctx, "../images/A/S1.png", "file://"+filepath.ToSlash(players))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, a.remote)
}
