// Package guide provides access to embedded help and guide pages used by
// the CLI's built-in documentation system.
package guide

import (
	"embed"
	"runtime"
	"strings"
)

//go:embed *.md
var files embed.FS

// Get returns the content of a guide page by name. If `name` is empty
// the default "guide" page is returned.
//
// Special case: "install" returns OS-specific instructions based on runtime.GOOS.
func Get(name string) (string, error) {
	if name == "" {
		name = "guide"
	}
	if name == "install" {
		name = "install-" + runtime.GOOS
	}
	data, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List returns the available guide page names (without the .md suffix).
// The per-OS install pages are listed once as "install".
func List() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	install := false
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		switch {
		case name == "guide":
		case strings.HasPrefix(name, "install-"):
			if !install {
				names = append(names, "install")
				install = true
			}
		default:
			names = append(names, name)
		}
	}
	return names, nil
}
