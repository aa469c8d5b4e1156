// Package repo provides ledger initialisation and discovery for sopstory.
//
// A sopstory project is a .sopstory directory holding the publication ledger
// (sopstory.db) and optionally a local config.yaml. Discovery mirrors git:
// starting from a directory, walk up until a .sopstory directory containing
// the ledger is found, or the filesystem root is reached.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/store"
)

// DBFile is the ledger filename inside the project directory.
const DBFile = "sopstory.db"

// ErrNotInitialised is returned when no ledger is found.
var ErrNotInitialised = errors.New("sopstory not initialised (run 'sopstory init')")

const gitignoreHeader = `# sopstory - local config is never committed
config.yaml
`

const localHeader = "# Local ledger (not committed)"

// InitOptions configures Init.
type InitOptions struct {
	Dir   string // target directory; empty for the current directory
	Force bool   // replace an existing ledger
	Local bool   // add the ledger to .gitignore
}

// Init creates the .sopstory directory and an empty ledger, returning the
// ledger path. Config is left to `sopstory config`.
func Init(opts InitOptions) (string, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	projDir := filepath.Join(dir, config.Dir)
	dbPath := filepath.Join(projDir, DBFile)

	if _, err := os.Stat(dbPath); err == nil {
		if !opts.Force {
			return "", fmt.Errorf("ledger %s already exists (use --force to reinitialise)", dbPath)
		}
		if err := os.Remove(dbPath); err != nil {
			return "", fmt.Errorf("remove ledger: %w", err)
		}
	}

	if err := os.MkdirAll(projDir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	if err := s.Init(); err != nil {
		return "", fmt.Errorf("init store: %w", err)
	}

	gitignore := filepath.Join(projDir, ".gitignore")
	if _, err := os.Stat(gitignore); os.IsNotExist(err) {
		if err := os.WriteFile(gitignore, []byte(gitignoreHeader), 0644); err != nil {
			return "", fmt.Errorf("write gitignore: %w", err)
		}
	}
	if opts.Local {
		if err := ignore(gitignore, DBFile); err != nil {
			return "", fmt.Errorf("ignore ledger: %w", err)
		}
	}
	return dbPath, nil
}

// Discover walks up from start (the working directory when empty) looking
// for a ledger and returns its path.
func Discover(start string) (string, error) {
	dir := start
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		dbPath := filepath.Join(dir, config.Dir, DBFile)
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialised
		}
		dir = parent
	}
}

// IsIgnored reports whether the ledger in projDir is gitignored.
func IsIgnored(projDir string) (bool, error) {
	lines, err := readLines(filepath.Join(projDir, ".gitignore"))
	if err != nil {
		return false, err
	}
	return slices.Contains(lines, DBFile), nil
}

// Ignore marks the ledger in projDir as local (gitignored).
func Ignore(projDir string) error {
	return ignore(filepath.Join(projDir, ".gitignore"), DBFile)
}

// Share marks the ledger in projDir as shared by removing its gitignore
// entry. Other lines are kept as they are.
func Share(projDir string) error {
	gitignore := filepath.Join(projDir, ".gitignore")
	content, err := os.ReadFile(gitignore)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	lines := strings.Split(string(content), "\n")
	kept := slices.DeleteFunc(lines, func(l string) bool {
		return strings.TrimSpace(l) == DBFile
	})
	if len(kept) == len(lines) {
		return nil
	}
	return os.WriteFile(gitignore, []byte(strings.Join(kept, "\n")), 0644)
}

// ignore appends entry under the local header unless already present.
// Existing content and formatting are preserved.
func ignore(gitignore, entry string) error {
	lines, err := readLines(gitignore)
	if err != nil {
		return err
	}
	if slices.Contains(lines, entry) {
		return nil
	}
	content, err := os.ReadFile(gitignore)
	if err != nil {
		return err
	}
	s := string(content)
	if !slices.Contains(lines, localHeader) {
		s += "\n" + localHeader + "\n"
	}
	s += entry + "\n"
	return os.WriteFile(gitignore, []byte(s), 0644)
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines, nil
}
