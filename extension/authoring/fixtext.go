// fixtext.go implements the "sopstory fix-text" command.
//
// Separated from normalise.go because text repair touches prose fields,
// never references, and is reported per field.
//
// Design: Stories exported from spreadsheets often carry UTF-8 that was
// decoded as Windows-1252 along the way ("â€™" for "'"), plus the _x000B_
// token Excel writes for a vertical tab. Repair is conservative: a field
// is only rewritten when the re-decoded text is valid UTF-8.

package authoring

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
)

// fixTextResult is the JSON shape of a text repair.
type fixTextResult struct {
	Story   string          `json:"story"`
	Content json.RawMessage `json:"content,omitempty"`
	Written string          `json:"written,omitempty"`
	Fixes   []textfix.Fix   `json:"fixes"`
}

func (e *Extension) newFixTextCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "fix-text <file>",
		Short: "Repair mis-encoded text in a story",
		Long: `Repair mojibake and spreadsheet artefacts in every text field of a story.

Without --out or --in-place the repaired story goes to stdout. Use
--dry-run to list the repairs without writing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runFixText,
	}
	c.Flags().String(extension.FlagOut, "", "Write the result to this file")
	c.Flags().BoolP(extension.FlagInPlace, "i", false, "Rewrite the input file")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "List repairs without writing")
	return c
}

func (e *Extension) runFixText(c *cobra.Command, args []string) error {
	src := args[0]
	out, _ := c.Flags().GetString(extension.FlagOut)
	inPlace, _ := c.Flags().GetBool(extension.FlagInPlace)
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)

	dest, err := destination(src, out, inPlace)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	l := log.Event("authoring:fix-text", "fix").
		Author(cmd.Author()).
		File(src)

	d, err := load(src)
	if err != nil {
		l.Write(err)
		return structuralExit(err)
	}
	fixes := textfix.Document(d)
	l.Story(d.ID).Detail("fixes", len(fixes)).Detail("dry_run", dryRun)

	if dryRun {
		l.Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(fixTextResult{Story: d.ID, Fixes: nonNilFixes(fixes)})
		}
		return format.Fixes(cmd.Out(), fixes)
	}

	if dest == "" && !cmd.JSON() {
		err = emit(d, "", story.FormatFor(src) == story.FormatYAML)
		l.Write(err)
		return err
	}
	res := fixTextResult{Story: d.ID, Written: dest, Fixes: nonNilFixes(fixes)}
	if dest != "" {
		err = emit(d, dest, false)
		l.File(dest)
	} else {
		res.Content, err = story.Encode(d)
	}
	l.Write(err)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if cmd.JSON() {
		return cmd.PrintJSON(res)
	}
	return format.Fixes(cmd.Out(), fixes)
}

func nonNilFixes(f []textfix.Fix) []textfix.Fix {
	if f == nil {
		return []textfix.Fix{}
	}
	return f
}
