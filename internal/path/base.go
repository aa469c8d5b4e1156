// base.go derives the base-relative prefix from the rendered output location.
//
// Separated from path.go because this is the only function that reasons
// about filesystem paths rather than web references. It is still pure: the
// output path is only split into segments, never stat'd.

package path

import (
	slashpath "path"
	"strings"
)

// BaseRelative returns the ascent prefix that leads from the directory of
// outputPath back to the staging root named by marker.
//
// The last segment of outputPath is the rendered file. The prefix contains
// one ".." per directory between the marker and that file. The marker match
// is case-insensitive and uses the closest (last) occurrence.
//
// Examples (marker="outputs"):
//   - "outputs/players/A_player.html"     -> ".."
//   - "site/outputs/players/v2/A.html"    -> "../.."
//   - "outputs/A_player.html"             -> "."
//   - "build/A_player.html" (no marker)   -> ".."
func BaseRelative(outputPath, marker string) string {
	marker = strings.Trim(strings.TrimSpace(marker), "/")
	if marker == "" {
		marker = DefaultStaging
	}

	p := toSlash(strings.TrimSpace(outputPath))
	if p == "" {
		return DefaultBase
	}
	p = slashpath.Clean(p)

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return DefaultBase
	}
	dirs := segs[:len(segs)-1]

	at := -1
	for i := len(dirs) - 1; i >= 0; i-- {
		if strings.EqualFold(dirs[i], marker) {
			at = i
			break
		}
	}
	if at < 0 {
		return DefaultBase
	}

	depth := len(dirs) - (at + 1)
	if depth == 0 {
		return "."
	}
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}
