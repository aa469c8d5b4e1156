package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"4w", 28 * 24 * time.Hour},
		{"3m", 90 * 24 * time.Hour},
		{"0d", 0},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "7", "d", "7h", "-1d", "1.5w"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}
