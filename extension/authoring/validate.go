// validate.go implements the "sopstory validate" command.
//
// Separated from authoring.go to isolate report rendering and exit status
// mapping.
//
// Design: The exit status carries the verdict for CI: 0 when there are no
// errors (warnings allowed), 1 for content errors, 2 when the document
// could not be read or modelled at all. A terminal gets the report as
// rendered markdown; pipes get the plain listing.

package authoring

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// validateResult is the JSON shape of a validation run.
type validateResult struct {
	Source   string           `json:"source"`
	Story    string           `json:"story,omitempty"`
	OK       bool             `json:"ok"`
	ExitCode int              `json:"exit_code"`
	Report   *validate.Report `json:"report"`
	Changes  []story.Change   `json:"changes,omitempty"`
}

func (e *Extension) newValidateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a story",
		Long: `Validate a story document and report errors and warnings.

References are normalised first, as publish does, so file checks see the
paths the player will load. --raw validates references as written.

Exit status: 0 no errors, 1 content errors, 2 unreadable document.
Use - to read the story from stdin.

Examples:
  sopstory validate SOP-7.json
  sopstory validate --check-files --player site/outputs/players/SOP-7_player.html SOP-7.json
  sopstory validate --raw SOP-7.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: e.runValidate,
	}
	c.Flags().Bool(extension.FlagCheckFiles, false, "Check referenced images and supplementary files exist")
	c.Flags().Bool(extension.FlagReachability, false, "Warn about steps unreachable from the start step")
	c.Flags().Bool(extension.FlagRaw, false, "Skip reference normalisation")
	c.Flags().String(extension.FlagPlayer, "", "Player output path references resolve against")
	c.Flags().String(extension.FlagBase, "", "Ascent prefix for references (e.g. ../..)")
	return c
}

func (e *Extension) runValidate(c *cobra.Command, args []string) error {
	src := args[0]
	checkFiles, _ := c.Flags().GetBool(extension.FlagCheckFiles)
	reach, _ := c.Flags().GetBool(extension.FlagReachability)
	raw, _ := c.Flags().GetBool(extension.FlagRaw)
	player, _ := c.Flags().GetString(extension.FlagPlayer)
	base, _ := c.Flags().GetString(extension.FlagBase)

	l := log.Event("authoring:validate", "validate").
		Author(cmd.Author()).
		File(src)

	data, err := readInput(src)
	if err != nil {
		l.Write(err)
		return structuralExit(err)
	}

	out, err := document.Check(c.Context(), e.config(), data, service.CheckOptions{
		Source:       src,
		Base:         base,
		Output:       player,
		CheckFiles:   checkFiles,
		Reachability: reach,
		SkipNormal:   raw,
	})
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	r := out.Report
	l.Findings(len(r.Errors), len(r.Warnings))
	if out.Document != nil {
		l.Story(out.Document.ID)
	}
	l.Write(nil)

	if err := printReport(src, out); err != nil {
		return err
	}
	if code := r.ExitCode(); code != validate.ExitOK {
		return &cmd.ExitError{Code: code}
	}
	return nil
}

// printReport writes the outcome as JSON, rendered markdown or plain text.
func printReport(src string, out *service.Outcome) error {
	s := format.Summary{Source: src, Doc: out.Document}
	switch {
	case cmd.JSON():
		res := validateResult{
			Source:   src,
			OK:       out.Report.OK(),
			ExitCode: out.Report.ExitCode(),
			Report:   out.Report,
			Changes:  out.Changes,
		}
		if out.Document != nil {
			res.Story = out.Document.ID
		}
		return cmd.PrintJSON(res)
	case cmd.TTY():
		return format.Render(cmd.Out(), format.Markdown(s, out.Report), true)
	default:
		return format.Report(cmd.Out(), s, out.Report)
	}
}

// structuralExit reports an unreadable input with the structural status.
func structuralExit(err error) error {
	if cmd.JSON() {
		_ = cmd.PrintJSON(map[string]string{"error": err.Error()})
		return &cmd.ExitError{Code: validate.ExitStructural}
	}
	return &cmd.ExitError{Code: validate.ExitStructural, Err: err}
}
