// convert.go implements the "sopstory convert" command.
//
// Separated from normalise.go because convert reads authoring rows, not a
// story, and has its own id and sheet selection.
//
// Design: References are canonicalised as rows are converted, using the
// configured base, so a converted story is already publishable. Building a
// player deeper in the tree normalises again for that location.

package authoring

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/convert"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/story"
)

// convertResult is the JSON shape of a conversion.
type convertResult struct {
	Story   string `json:"story"`
	Start   string `json:"start"`
	Steps   int    `json:"steps"`
	Written string `json:"written,omitempty"`
}

func (e *Extension) newConvertCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "convert <rows.csv|rows.xlsx>",
		Short: "Convert authoring rows into a story",
		Long: `Convert spreadsheet rows (CSV or XLSX) into a story document.

The story id defaults to the input file name without its extension. The
start step is the first row with a truthy Start_Here column, else the first
row.

Examples:
  sopstory convert --id SOP-7 rows.csv --out stories/SOP-7.json
  sopstory convert --sheet Steps workbook.xlsx > SOP-7.json`,
		Args: cobra.ExactArgs(1),
		RunE: e.runConvert,
	}
	c.Flags().String(extension.FlagID, "", "Story id (sop_id)")
	c.Flags().String(extension.FlagSheet, "", "XLSX sheet name (default: first sheet)")
	c.Flags().String(extension.FlagOut, "", "Write the story to this file (.json or .yaml)")
	c.Flags().Bool(extension.FlagYAML, false, "Write YAML to stdout")
	return c
}

func (e *Extension) runConvert(c *cobra.Command, args []string) error {
	src := args[0]
	id, _ := c.Flags().GetString(extension.FlagID)
	sheet, _ := c.Flags().GetString(extension.FlagSheet)
	out, _ := c.Flags().GetString(extension.FlagOut)
	asYAML, _ := c.Flags().GetBool(extension.FlagYAML)

	if id == "" {
		id = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	l := log.Event("authoring:convert", "convert").
		Author(cmd.Author()).
		Story(id).
		File(src)

	rows, err := convert.ReadFile(src, sheet)
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	d, err := convert.Convert(rows, convert.Options{ID: id, Paths: e.config().PathOptions("")})
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(fmt.Errorf("convert %s: %w", src, err))
	}
	l.Detail("steps", len(d.Steps))

	res := convertResult{Story: d.ID, Start: d.StartID, Steps: len(d.Steps), Written: out}
	if out == "" && cmd.JSON() {
		// The story itself is the JSON output.
		err = emit(d, "", false)
		l.Write(err)
		return err
	}

	err = emit(d, out, asYAML)
	l.File(out).Write(err)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if out == "" {
		return nil
	}
	if cmd.JSON() {
		return cmd.PrintJSON(res)
	}
	fmt.Fprintf(cmd.Out(), "Wrote %s with %d steps. Start=%s\n", out, len(d.Steps), startOf(d))
	return nil
}

func startOf(d *story.Document) string {
	if d.StartID == "" {
		return "-"
	}
	return d.StartID
}
