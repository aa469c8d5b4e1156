// vacuum.go implements the "sopstory vacuum" command for permanent deletion.
//
// Separated from extension.go because vacuum is destructive and requires
// special handling including confirmation prompts and dry-run support.
//
// Design: Vacuum is a NoStoreCommand. It opens the ledger itself so the
// connection is closed before the process exits, and so extension tables
// can be vacuumed through the same handle.

package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/duration"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/vacuum"
)

func newVacuumCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "vacuum",
		Short: "Permanently delete retired stories",
		Long: `Permanently delete retired stories and every version they hold.

This is irreversible. Use --force to skip confirmation.

Duration formats: 7d (days), 4w (weeks), 3m (months)`,
		Args: cobra.NoArgs,
		RunE: runVacuum,
	}
	c.Flags().String(extension.FlagOlderThan, "", "Only purge retirements older than duration (e.g., 7d, 4w, 3m)")
	c.Flags().StringP(extension.FlagPath, "p", "", "Only purge story ids with this prefix")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Show what would be deleted")
	return c
}

func runVacuum(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	dbPath, err := cmd.LedgerPath()
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	svc, err := document.New(dbPath)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("open ledger: %w", err))
	}
	defer svc.Close()

	olderThan, _ := c.Flags().GetString(extension.FlagOlderThan)
	prefix, _ := c.Flags().GetString(extension.FlagPath)
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)

	opts := vacuum.Options{Prefix: prefix, DryRun: dryRun}
	if olderThan != "" {
		d, err := duration.Parse(olderThan)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("parse duration %q: %w", olderThan, err))
		}
		opts.OlderThan = &d
	}

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	if !dryRun && !cmd.Force() {
		fmt.Fprint(cmd.Out(), "Permanently delete retired stories? This cannot be undone. [y/N] ")
		response, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("reading confirmation: %w", err))
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.Out(), "Cancelled")
			return nil
		}
	}

	result, err := vacuum.Run(ctx, w, svc, opts)

	log.Event("core:vacuum", "vacuum").
		Author(cmd.Author()).
		Story(prefix).
		Detail("dry_run", dryRun).
		Detail("count", result.Deleted).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("vacuum: %w", err))
	}
	if dryRun {
		if cmd.JSON() {
			return cmd.PrintJSON(result)
		}
		return nil
	}

	extCtx := extension.NewContext(svc, svc.DB(), svc.Config())
	pruned, err := extension.VacuumAll(extCtx, opts.OlderThan)
	for _, p := range pruned {
		fmt.Fprintf(w, "Vacuumed %d row(s) from %s\n", p.Rows, p.Extension)
	}
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		return cmd.PrintJSON(result)
	}
	return nil
}
