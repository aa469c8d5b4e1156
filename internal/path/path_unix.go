//go:build !windows

// path_unix.go provides Unix-specific separator handling (Linux, macOS, etc).
//
// On Unix systems, backslashes are valid filename characters, not path separators.
// filepath.ToSlash does NOT convert them, yet output paths handed over from
// Windows build machines (CI logs, shared configs) still use them. We replace
// them explicitly.

package path

import "strings"

// toSlash converts an OS output path to forward slashes.
func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
