package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	main, err := Get("")
	require.NoError(t, err)
	assert.Contains(t, main, "# sopstory")

	install, err := Get("install")
	require.NoError(t, err)
	assert.Contains(t, install, "go install")

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.Contains(t, names, "validate")
	assert.Contains(t, names, "install")
	assert.NotContains(t, names, "guide")
	assert.NotContains(t, names, "install-linux")

	for _, n := range names {
		_, err := Get(n)
		assert.NoError(t, err, n)
	}
}
