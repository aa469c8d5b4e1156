// Package path rewrites asset references found in story documents into the
// single portable form the player expects.
//
// Stories are authored against a staging layout where build artefacts live
// under one well-known directory (the staging token, "outputs" by default):
//
//	outputs/images/<SOP>/<slide>.png
//	outputs/faq/<file>.html
//	outputs/players/<SOP>_player.html
//
// The rendered player resolves image references relative to its own
// location, so "/outputs/images/A/S1.png" must become "../images/A/S1.png"
// when the player lives in outputs/players. A leading slash is never
// portable: static hosts that serve the site from a sub-path (GitHub Pages
// project sites, for example) resolve it against the host root.
//
// Normalisation rules:
//   - References use forward slashes and carry no surrounding whitespace
//   - "/../x" is repaired to "../x" before anything else runs
//   - External URLs are never rewritten
//   - Staging-rooted references ("/outputs/x", "outputs/x") get the base prefix
//   - Everything else is already portable and passes through unchanged
//
// Nothing in this package touches the filesystem.
package path

import "strings"

// DefaultStaging is the staging-root directory name used when none is configured.
const DefaultStaging = "outputs"

// DefaultBase is the base-relative prefix for the standard layout, where the
// player sits one directory below the staging root.
const DefaultBase = ".."

// DefaultFolders are the supplementary content folders kept directly under
// the staging root.
var DefaultFolders = []string{"faq", "quiz"}

// Options configures reference canonicalisation.
type Options struct {
	Staging string   // staging-root token without slashes, e.g. "outputs"
	Base    string   // ascent prefix from the rendered file, e.g. ".." or "../.."
	Folders []string // bare category folders directly under the staging root
}

// DefaultOptions returns the options for the standard outputs/players layout.
func DefaultOptions() Options {
	return Options{
		Staging: DefaultStaging,
		Base:    DefaultBase,
		Folders: append([]string(nil), DefaultFolders...),
	}
}

// withDefaults fills unset fields so callers can pass a partial Options.
func (o Options) withDefaults() Options {
	o.Staging = strings.Trim(strings.TrimSpace(o.Staging), "/")
	if o.Staging == "" {
		o.Staging = DefaultStaging
	}
	o.Base = strings.TrimSuffix(strings.TrimSpace(o.Base), "/")
	if o.Base == "" {
		o.Base = "."
	}
	if o.Folders == nil {
		o.Folders = DefaultFolders
	}
	return o
}

// Canonical returns ref rewritten into canonical portable form.
// Unrecognised shapes are returned unchanged (after slash cleanup).
func Canonical(ref string, opts Options) string {
	out, _ := Apply(ref, opts)
	return out
}

// Apply canonicalises ref and reports the name of the rule that matched.
// The rule name is empty when the reference passed through unchanged.
func Apply(ref string, opts Options) (string, string) {
	ref = clean(ref)
	if ref == "" {
		return "", ""
	}
	opts = opts.withDefaults()
	for _, r := range rules {
		if r.Match(ref, opts) {
			return r.Rewrite(ref, opts), r.Name
		}
	}
	return ref, ""
}

// Location normalises a supplementary content location (the folder part of
// a FAQ or quiz reference) into a bare category name: leading slashes, the
// staging token and trailing slashes are removed.
//
// Examples (staging="outputs"):
//   - "/outputs/faq" -> "faq"
//   - "outputs/faq/" -> "faq"
//   - "faq"          -> "faq"
func Location(loc, staging string) string {
	loc = clean(loc)
	staging = strings.Trim(strings.TrimSpace(staging), "/")
	if staging == "" {
		staging = DefaultStaging
	}
	loc = strings.TrimLeft(loc, "/")
	loc = strings.TrimPrefix(loc, staging+"/")
	return strings.Trim(loc, "/")
}

// IsExternal reports whether ref is a fully qualified URL (scheme://...,
// protocol-relative //host/..., mailto: or data:). External references are
// never rewritten and never checked for existence.
func IsExternal(ref string) bool {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return true
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "data:") {
		return true
	}
	i := strings.Index(ref, "://")
	if i <= 0 {
		return false
	}
	for j, r := range ref[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// clean trims whitespace and converts backslashes to forward slashes.
// References are web paths, so backslashes are always separators here
// regardless of the host OS.
func clean(ref string) string {
	return strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/")
}

// join appends rest to the base prefix.
func join(base, rest string) string {
	rest = strings.TrimLeft(rest, "/")
	if rest == "" {
		return base
	}
	return base + "/" + rest
}
