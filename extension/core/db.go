// db.go implements the "sopstory db" command for ledger sharing status.
//
// Separated from extension.go to isolate local/shared toggling via
// gitignore manipulation.
//
// Design: DB is a NoStoreCommand because it manages ledger metadata
// (gitignore entries) without opening the ledger. This allows managing a
// ledger that is locked by a running server.

package core

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/repo"
)

// dbStatus is the JSON shape of the db command.
type dbStatus struct {
	Ledger string `json:"ledger"`
	Status string `json:"status"`
}

func newDBCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "db",
		Short: "Show or change the ledger's local/shared status",
		Long: `Show the ledger location, or change whether it is committed.

  sopstory db            # show ledger path and status
  sopstory db --local    # mark the ledger as local (gitignored)
  sopstory db --share    # mark the ledger as shared (committed)`,
		Args: cobra.NoArgs,
		RunE: runDB,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark ledger as local")
	c.Flags().BoolP(extension.FlagShare, "s", false, "Mark ledger as shared")
	c.MarkFlagsMutuallyExclusive(extension.FlagLocal, extension.FlagShare)
	return c
}

func runDB(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	share, _ := c.Flags().GetBool(extension.FlagShare)

	dbPath, err := cmd.LedgerPath()
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	projDir := filepath.Dir(dbPath)

	action := "status"
	switch {
	case local:
		action = "ignore"
		err = repo.Ignore(projDir)
	case share:
		action = "share"
		err = repo.Share(projDir)
	}
	var ignored bool
	if err == nil {
		ignored, err = repo.IsIgnored(projDir)
	}

	log.Event("core:db", action).
		Author(cmd.Author()).
		File(dbPath).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("db %s: %w", action, err))
	}

	status := "shared"
	if ignored {
		status = "local"
	}
	if cmd.JSON() {
		return cmd.PrintJSON(dbStatus{Ledger: dbPath, Status: status})
	}
	fmt.Fprintf(cmd.Out(), "%s: %s\n", dbPath, status)
	return nil
}
