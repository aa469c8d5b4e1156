package path

import (
	"testing"
)

func TestCanonical(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		input string
		want  string
	}{
		// Staging-rooted references
		{"/outputs/images/A/S1.png", "../images/A/S1.png"},
		{"outputs/images/A/S1.png", "../images/A/S1.png"},
		{"/outputs/docs/guide.pdf", "../docs/guide.pdf"},

		// Legacy "/../" repair
		{"/../images/A/S1.png", "../images/A/S1.png"},
		{"/../outputs/images/A/S1.png", "../outputs/images/A/S1.png"},

		// Bare category folders
		{"/outputs/faq", "../faq"},
		{"outputs/quiz", "../quiz"},
		{"/outputs/faq/", "../faq"},

		// Already portable
		{"../images/A/S1.png", "../images/A/S1.png"},
		{"images/A/S1.png", "images/A/S1.png"},
		{"/images/A/S1.png", "/images/A/S1.png"},
		{"outputs", "outputs"},

		// External URLs are never rewritten
		{"https://example.com/outputs/images/a.png", "https://example.com/outputs/images/a.png"},
		{"HTTP://example.com/a.png", "HTTP://example.com/a.png"},
		{"//cdn.example.com/outputs/a.png", "//cdn.example.com/outputs/a.png"},
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},

		// Cleanup
		{"  /outputs/images/a.png ", "../images/a.png"},
		{`\outputs\images\a.png`, "../images/a.png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canonical(tt.input, opts); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	inputs := []string{
		"/outputs/images/A/S1.png",
		"outputs/images/A/S1.png",
		"/../images/A/S1.png",
		"/outputs/faq",
		"../images/A/S1.png",
		"https://example.com/x.png",
		"/images/x.png",
	}
	for _, base := range []string{"..", "../..", "."} {
		opts := DefaultOptions()
		opts.Base = base
		for _, in := range inputs {
			once := Canonical(in, opts)
			twice := Canonical(once, opts)
			if once != twice {
				t.Errorf("base %q: Canonical(%q) = %q, again = %q", base, in, once, twice)
			}
		}
	}
}

func TestCanonical_CustomOptions(t *testing.T) {
	opts := Options{Staging: "build", Base: "../..", Folders: []string{"help"}}

	tests := []struct {
		input string
		want  string
	}{
		{"/build/images/a.png", "../../images/a.png"},
		{"build/help", "../../help"},
		{"/outputs/images/a.png", "/outputs/images/a.png"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.input, opts); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonical_EmptyBase(t *testing.T) {
	opts := DefaultOptions()
	opts.Base = ""
	if got := Canonical("/outputs/images/a.png", opts); got != "./images/a.png" {
		t.Errorf("got %q, want %q", got, "./images/a.png")
	}
}

func TestApply_RuleOrder(t *testing.T) {
	tests := []struct {
		input string
		rule  string
	}{
		{"/../images/a.png", RuleLegacyAscent},
		{"https://x.test/a.png", RuleExternal},
		{"/outputs/faq", RuleBareFolder},
		{"/outputs/images/a.png", RuleRootedStaging},
		{"outputs/images/a.png", RuleStaging},
		{"../images/a.png", ""},
	}
	for _, tt := range tests {
		_, rule := Apply(tt.input, DefaultOptions())
		if rule != tt.rule {
			t.Errorf("Apply(%q) rule = %q, want %q", tt.input, rule, tt.rule)
		}
	}

	// The legacy repair must stay ahead of every generic rule.
	if first := Rules()[0].Name; first != RuleLegacyAscent {
		t.Errorf("first rule = %q, want %q", first, RuleLegacyAscent)
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/outputs/faq", "faq"},
		{"outputs/faq", "faq"},
		{"outputs/faq/", "faq"},
		{"//outputs/quiz//", "quiz"},
		{"faq", "faq"},
		{`outputs\faq`, "faq"},
		{"", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := Location(tt.input, "outputs"); got != tt.want {
			t.Errorf("Location(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsExternal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"gs://bucket/obj", true},
		{"svn+ssh://host/repo", true},
		{"mailto:ops@example.com", true},
		{"//cdn.example.com/a.png", true},
		{"C:/images/a.png", false},
		{"../images/a.png", false},
		{"/outputs/a.png", false},
		{"1http://x", false},
		{"://x", false},
	}
	for _, tt := range tests {
		if got := IsExternal(tt.input); got != tt.want {
			t.Errorf("IsExternal(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBaseRelative(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"outputs/players/A_player.html", ".."},
		{"/workspaces/SOP_Build/outputs/players/A_player.html", ".."},
		{"site/outputs/players/v2/A.html", "../.."},
		{"outputs/A_player.html", "."},
		{"Outputs/Players/A.html", ".."},
		{"build/A_player.html", ".."},
		{"A_player.html", ".."},
		{"outputs/players/../players/A.html", ".."},
		{"/srv/outputs/old/outputs/players/A.html", ".."},
		{"", ".."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BaseRelative(tt.input, "outputs"); got != tt.want {
				t.Errorf("BaseRelative(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBaseRelative_Deterministic(t *testing.T) {
	p := "site/outputs/players/v2/A.html"
	first := BaseRelative(p, "outputs")
	for range 5 {
		if got := BaseRelative(p, "outputs"); got != first {
			t.Fatalf("BaseRelative not deterministic: %q vs %q", got, first)
		}
	}
}
