package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/sopstory/internal/story"
)

func TestParseVersionRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		v1      int
		v2      int
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid range",
			input: "1:3",
			v1:    1,
			v2:    3,
		},
		{
			name:  "same version",
			input: "2:2",
			v1:    2,
			v2:    2,
		},
		{
			name:  "large versions",
			input: "100:999",
			v1:    100,
			v2:    999,
		},
		{
			name:    "empty colon",
			input:   ":",
			wantErr: true,
			errMsg:  "both versions required",
		},
		{
			name:    "missing start",
			input:   ":5",
			wantErr: true,
			errMsg:  "both versions required",
		},
		{
			name:    "missing end",
			input:   "3:",
			wantErr: true,
			errMsg:  "both versions required",
		},
		{
			name:    "no colon",
			input:   "5",
			wantErr: true,
			errMsg:  "expected v1:v2",
		},
		{
			name:    "too many colons",
			input:   "1:2:3",
			wantErr: true,
			errMsg:  "expected v1:v2",
		},
		{
			name:    "non-numeric start",
			input:   "abc:5",
			wantErr: true,
			errMsg:  "invalid start version",
		},
		{
			name:    "non-numeric end",
			input:   "3:xyz",
			wantErr: true,
			errMsg:  "invalid end version",
		},
		{
			name:    "zero start",
			input:   "0:3",
			wantErr: true,
			errMsg:  "start version must be >= 1",
		},
		{
			name:    "negative start",
			input:   "-1:3",
			wantErr: true,
			errMsg:  "start version must be >= 1",
		},
		{
			name:    "zero end",
			input:   "1:0",
			wantErr: true,
			errMsg:  "end version must be >= 1",
		},
		{
			name:    "negative end",
			input:   "1:-5",
			wantErr: true,
			errMsg:  "end version must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v1, v2, err := ParseVersionRange(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseVersionRange(%q) = (%d, %d, nil), want error containing %q",
						tt.input, v1, v2, tt.errMsg)
					return
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseVersionRange(%q) error = %q, want containing %q",
						tt.input, err.Error(), tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseVersionRange(%q) = error %v, want (%d, %d)",
					tt.input, err, tt.v1, tt.v2)
				return
			}

			if v1 != tt.v1 || v2 != tt.v2 {
				t.Errorf("ParseVersionRange(%q) = (%d, %d), want (%d, %d)",
					tt.input, v1, v2, tt.v1, tt.v2)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	old := "a\nb\nc\n"
	new := "a\nB\nc\n"
	r := Compute(old, new, "SOP-1 v1", "SOP-1 v2")

	assert.Equal(t, "  a\n- b\n+ B\n  c\n", r.Diff)
	assert.True(t, strings.HasPrefix(r.Format(false), "--- SOP-1 v1\n+++ SOP-1 v2\n"))
	assert.Contains(t, r.Format(true), "\033[31m- b")
}

func TestCompute_CollapsesContext(t *testing.T) {
	var lines []string
	for i := range 10 {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	old := strings.Join(lines, "\n") + "\n"
	new := old + "tail\n"

	r := Compute(old, new, "a", "b")
	assert.Contains(t, r.Diff, "  ...\n")
	assert.Contains(t, r.Diff, "+ tail\n")
	assert.NotContains(t, r.Diff, "  xxxxx\n", "middle lines collapsed")
}

func TestSteps(t *testing.T) {
	old := story.New("SOP-1", "A", []story.Step{
		{ID: "A", Title: "Start", Transitions: []story.Transition{{To: "B", Label: "go"}}},
		{ID: "B", Title: "Middle"},
		{ID: "C", Title: "Gone"},
	})
	new := story.New("SOP-1", "B", []story.Step{
		{ID: "A", Title: "Start", Transitions: []story.Transition{{To: "B", Label: "go"}}},
		{ID: "B", Title: "Middle, edited"},
		{ID: "D", Title: "New"},
	})

	s := Steps(old, new)
	assert.Equal(t, []string{"D"}, s.Added)
	assert.Equal(t, []string{"C"}, s.Removed)
	assert.Equal(t, []string{"B"}, s.Changed)
	assert.Equal(t, "A -> B", s.Start)
	assert.False(t, s.Empty())
	assert.True(t, Steps(old, old).Empty())
}

func TestDocuments(t *testing.T) {
	old := story.New("SOP-1", "A", []story.Step{{ID: "A", Title: "One"}})
	new := story.New("SOP-1", "A", []story.Step{{ID: "A", Title: "Two"}})

	r, err := Documents(old, new, "v1", "v2")
	require.NoError(t, err)
	assert.Contains(t, r.Diff, `-       "title": "One"`)
	assert.Contains(t, r.Diff, `+       "title": "Two"`)
	assert.Equal(t, []string{"A"}, r.Steps.Changed)
	assert.Contains(t, r.Format(false), "changed: A\n")
}
