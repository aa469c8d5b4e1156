/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Separated from root.go to isolate the initialisation logic that discovers
// the ledger, loads config, and wires up extensions.
//
// Design: Extensions register during init() but aren't initialised until
// first command execution. This two-phase pattern allows extensions to
// declare commands before a ledger exists. The service is created once and
// shared across all extensions via the Context.

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/log"
)

// noStoreCommands lists commands that bypass automatic ledger initialisation.
// Built from bootstrap commands plus extension-declared storeless commands.
var noStoreCommands map[string]bool

// authorRequiredCommands lists commands that change the ledger.
var authorRequiredCommands = map[string]bool{
	"import":  true,
	"publish": true,
	"revert":  true,
	"rm":      true,
	"restore": true,
	"vacuum":  true,
}

// buildNoStoreCommands creates the set of commands that skip ledger
// initialisation.
//
// Two categories work without a ledger:
//
//  1. Bootstrap commands (init, guide, config) that help users set up.
//  2. Extension-declared storeless commands. Extensions implement
//     extension.Storeless for commands that work on loose files or manage
//     their own service lifecycle.
func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		"init":   true,
		"guide":  true,
		"config": true,
		"help":   true,
	}
	for _, name := range extension.NoStoreCommands() {
		cmds[name] = true
	}
	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext extension.Context
	extService *document.Service
	initOnce   sync.Once
	initErr    error
)

// initExtensions creates the ledger service and injects it into extensions.
//
// sync.Once guarantees exactly one service per process; opening the ledger
// sets up WAL mode and must be shared.
func initExtensions() error {
	initOnce.Do(func() {
		dbPath, err := LedgerPath()
		if err != nil {
			initErr = err
			return
		}
		svc, err := document.New(dbPath)
		if err != nil {
			initErr = fmt.Errorf("opening ledger: %w", err)
			return
		}
		extService = svc

		if abs, err := filepath.Abs(filepath.Dir(dbPath)); err == nil {
			log.SetProject(abs)
		}

		extContext = extension.NewContext(svc, svc.DB(), svc.Config())
		svc.SetExtensionContext(extContext)

		initErr = extension.InitAll(extContext)
	})
	return initErr
}

// Context returns the shared extension context, or nil before
// initialisation.
func Context() extension.Context {
	return extContext
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, c := range ext.Commands() {
				rootCmd.AddCommand(c)
			}
		}
		noStoreCommands = buildNoStoreCommands()
	})
}
