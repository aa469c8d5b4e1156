// Package all imports all built-in sopstory extensions.
// Import this package to register every command.
package all

import (
	// Each extension registers itself via init()
	_ "github.com/jpl-au/sopstory/extension/authoring"
	_ "github.com/jpl-au/sopstory/extension/core"
	_ "github.com/jpl-au/sopstory/extension/ledger"
	_ "github.com/jpl-au/sopstory/extension/tag"
)
