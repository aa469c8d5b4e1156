/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Separated from root.go to isolate flag definitions from command logic.
// Extensions access these via exported accessor functions rather than
// directly accessing the variables.
//
// Design: Flags are defined as package-level variables and bound to the
// root command. Accessors are provided so extensions can read flag values
// without coupling to cobra internals. The JSON() helper simplifies output
// format detection across all commands.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/repo"
)

var validOutputFormats = []string{"json"}

var (
	output  string
	author  string
	message string
	force   bool
	db      string
	dir     string
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// Output returns the output format flag value.
func Output() string { return output }

// Author returns the author flag value.
func Author() string { return author }

// Message returns the message flag value.
func Message() string { return message }

// Force returns the force flag value.
func Force() bool { return force }

// DB returns the explicit ledger path.
// Priority: --db flag > SOPSTORY_DB env var > empty (discover).
func DB() string {
	if db != "" {
		return db
	}
	return os.Getenv("SOPSTORY_DB")
}

// Dir returns the directory ledger discovery starts from.
// Priority: --dir flag > SOPSTORY_DIR env var > empty (working directory).
func Dir() string {
	if dir != "" {
		return dir
	}
	return os.Getenv("SOPSTORY_DIR")
}

// LedgerPath resolves the ledger file: the explicit path when one is set,
// otherwise the first .sopstory/sopstory.db found walking up from Dir().
func LedgerPath() (string, error) {
	if p := DB(); p != "" {
		return p, nil
	}
	return repo.Discover(Dir())
}

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// TTY reports whether output goes to a terminal, for colour and markdown
// rendering decisions.
func TTY() bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// In JSON mode the returned error only carries the exit status, so the
// message is not printed twice; otherwise err is returned unchanged.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	// If we can't print the error, checking that failure is futile.
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return &ExitError{Code: 1}
}

// detectAuthor resolves the default author for version attribution.
// Returns empty string when config is missing or has no author set.
func detectAuthor() string {
	if cfg, err := config.Load(); err == nil && cfg.Author.Name != "" {
		return cfg.Author.Name
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVarP(&author, "author", "a", "", "Version attribution")
	rootCmd.PersistentFlags().StringVarP(&message, "message", "m", "", "Version message")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")
	rootCmd.PersistentFlags().StringVar(&db, "db", "", "Ledger file (skip discovery)")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Directory ledger discovery starts from")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
