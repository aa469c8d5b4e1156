// flags.go defines constants for all CLI flag names.
//
// Using constants instead of string literals prevents typos and enables
// compile-time checking when flag names are used in both Flags().Type()
// definitions and GetType() calls.
//
// Naming convention: Flag<PascalCaseName> where name matches the kebab-case
// CLI flag (e.g., "dry-run" -> FlagDryRun).

package extension

// Flag name constants for CLI commands.
const (
	// Boolean flags

	FlagAll           = "all"            // Include retired stories
	FlagCheckFiles    = "check-files"    // Check referenced files exist
	FlagDeleted       = "deleted"        // Show only retired stories
	FlagDiff          = "diff"           // Show diff output
	FlagDryRun        = "dry-run"        // Preview without making changes
	FlagIncludeHidden = "include-hidden" // Include hidden files/directories
	FlagInPlace       = "in-place"       // Rewrite the input file
	FlagLocal         = "local"          // Use local scope (gitignored)
	FlagLong          = "long"           // Long format output
	FlagNumber        = "number"         // Number output lines
	FlagPrefix        = "prefix"         // Treat the argument as an id prefix
	FlagRaw           = "raw"            // Validate references as written
	FlagReachability  = "reachability"   // Warn about unreachable steps
	FlagReverse       = "reverse"        // Reverse sort order
	FlagShare         = "share"          // Mark the ledger as shared
	FlagSteps         = "steps"          // Show the step graph
	FlagWarnings      = "warnings"       // Only stories with warnings
	FlagYAML          = "yaml"           // YAML output

	// String flags

	FlagBase      = "base"       // Ascent prefix for references
	FlagExit      = "exit"       // Player exit link
	FlagFile      = "file"       // Working file to compare
	FlagID        = "id"         // Story id override
	FlagMode      = "mode"       // Player mode
	FlagOlderThan = "older-than" // Duration threshold
	FlagOut       = "out"        // Output file or directory
	FlagPath      = "path"       // Story id prefix filter
	FlagPlayer    = "player"     // Player output path the base derives from
	FlagSheet     = "sheet"      // Spreadsheet sheet name
	FlagSort      = "sort"       // Sort field
	FlagStoryWeb  = "story-web"  // Web path of the story file
	FlagTemplate  = "template"   // Player template file
	FlagTitle     = "title"      // Page title override
	FlagVersions  = "versions"   // Version range (e.g., "3:5")

	// Integer flags

	FlagImageWidth = "image-width" // Player image width in percent
	FlagLimit      = "limit"       // Limit number of results
	FlagVersion    = "version"     // Specific version number
)
