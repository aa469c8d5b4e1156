//go:build windows

// path_windows.go provides Windows-specific separator handling.
//
// On Windows, backslashes are native path separators. filepath.ToSlash
// converts them and leaves volume names intact.

package path

import "path/filepath"

// toSlash converts an OS output path to forward slashes.
func toSlash(p string) string {
	return filepath.ToSlash(p)
}
