// rules.go defines the ordered rewrite rules behind Canonical.
//
// Each rule is a predicate paired with a transform. Rules are evaluated in
// slice order and the first match wins, so the legacy "/../" repair must sit
// ahead of the staging rules: browsers collapse "/../x" to "/x" and a generic
// rule would happily leave it rooted.

package path

import (
	"slices"
	"strings"
)

// Rule names reported by Apply.
const (
	RuleLegacyAscent  = "legacy-ascent"
	RuleExternal      = "external"
	RuleBareFolder    = "bare-folder"
	RuleRootedStaging = "rooted-staging"
	RuleStaging       = "staging"
)

// Rule is a single canonicalisation step.
type Rule struct {
	Name    string
	Match   func(ref string, o Options) bool
	Rewrite func(ref string, o Options) string
}

var rules = []Rule{
	{
		Name: RuleLegacyAscent,
		Match: func(ref string, _ Options) bool {
			return strings.HasPrefix(ref, "/../")
		},
		Rewrite: func(ref string, _ Options) string {
			return ref[1:]
		},
	},
	{
		Name:    RuleExternal,
		Match:   func(ref string, _ Options) bool { return IsExternal(ref) },
		Rewrite: func(ref string, _ Options) string { return ref },
	},
	{
		Name: RuleBareFolder,
		Match: func(ref string, o Options) bool {
			_, ok := bareFolder(ref, o)
			return ok
		},
		Rewrite: func(ref string, o Options) string {
			folder, _ := bareFolder(ref, o)
			return join(o.Base, folder)
		},
	},
	{
		Name: RuleRootedStaging,
		Match: func(ref string, o Options) bool {
			return strings.HasPrefix(ref, "/"+o.Staging+"/")
		},
		Rewrite: func(ref string, o Options) string {
			return join(o.Base, ref[len(o.Staging)+2:])
		},
	},
	{
		Name: RuleStaging,
		Match: func(ref string, o Options) bool {
			return strings.HasPrefix(ref, o.Staging+"/")
		},
		Rewrite: func(ref string, o Options) string {
			return join(o.Base, ref[len(o.Staging)+1:])
		},
	},
}

// Rules returns a copy of the ordered rule list, for inspection and tests.
func Rules() []Rule {
	return slices.Clone(rules)
}

// bareFolder reports whether ref names exactly one of the configured folders
// under the staging root ("/outputs/faq", "outputs/quiz/"), returning the
// folder name without slashes.
func bareFolder(ref string, o Options) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimPrefix(ref, "/"), o.Staging+"/")
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	if !slices.Contains(o.Folders, rest) {
		return "", false
	}
	return rest, true
}
