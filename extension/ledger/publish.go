// publish.go implements the "sopstory publish" command.
//
// Separated from ledger.go to isolate input handling and the rejection
// path, which prints the validation report and sets the exit status.
//
// Design: Publish is all-or-nothing. A report with errors stores nothing
// and exits with the validate status (1 content, 2 structural), so CI can
// treat `sopstory publish` exactly like `sopstory validate`. Publishing
// content identical to the latest version succeeds without a new version.

package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/store"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/validate"
)

// publishResult is the JSON shape of a publish.
type publishResult struct {
	Published bool             `json:"published"`
	Story     string           `json:"story,omitempty"`
	Result    *store.Result    `json:"result,omitempty"`
	Report    *validate.Report `json:"report"`
	Changes   []story.Change   `json:"changes"`
}

func (e *Extension) newPublishCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "publish <file>",
		Short: "Normalise, validate and store a story",
		Long: `Normalise a story's references, validate it and store it as a new version.

Nothing is stored when validation reports errors; the report is printed and
the exit status matches validate (1 content errors, 2 unreadable document).
Use - to read the story from stdin.

Examples:
  sopstory publish SOP-7.json -m "Fix branch labels"
  sopstory publish --check-files stories/SOP-7.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: e.runPublish,
	}
	c.Flags().Bool(extension.FlagCheckFiles, false, "Check referenced images and supplementary files exist")
	c.Flags().Bool(extension.FlagReachability, false, "Warn about steps unreachable from the start step")
	c.Flags().String(extension.FlagPlayer, "", "Player output path the reference base is derived from")
	c.Flags().String(extension.FlagBase, "", "Ascent prefix for references (e.g. ../..)")
	return c
}

func (e *Extension) runPublish(c *cobra.Command, args []string) error {
	ctx := c.Context()
	src := args[0]
	checkFiles, _ := c.Flags().GetBool(extension.FlagCheckFiles)
	reach, _ := c.Flags().GetBool(extension.FlagReachability)
	player, _ := c.Flags().GetString(extension.FlagPlayer)
	base, _ := c.Flags().GetString(extension.FlagBase)

	data, err := readInput(src)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	l := log.Event("ledger:publish", "publish").
		Author(cmd.Author()).
		File(src)

	out, err := e.svc.Publish(ctx, data, service.PublishOptions{
		CheckOptions: service.CheckOptions{
			Source:       src,
			Base:         base,
			Output:       player,
			CheckFiles:   checkFiles,
			Reachability: reach,
		},
		Author:  cmd.Author(),
		Message: cmd.Message(),
	})
	if out != nil {
		l.Findings(len(out.Report.Errors), len(out.Report.Warnings))
		if out.Document != nil {
			l.Story(out.Document.ID)
		}
	}
	if errors.Is(err, validate.ErrNotPublishable) {
		l.Write(err)
		return e.rejected(src, out)
	}
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	l.ResultVersion(out.Result.Version).
		Detail("created", out.Result.Created).
		Write(nil)

	if cmd.JSON() {
		return cmd.PrintJSON(publishResult{
			Published: true,
			Story:     out.Document.ID,
			Result:    out.Result,
			Report:    out.Report,
			Changes:   nonNil(out.Changes),
		})
	}

	w := cmd.Out()
	for _, m := range out.Report.Warnings {
		fmt.Fprintln(w, "warning: "+m)
	}
	if !out.Result.Created {
		fmt.Fprintf(w, "Unchanged %s v%d (%s)\n", out.Document.ID, out.Result.Version, out.Result.Key)
		return nil
	}
	fmt.Fprintf(w, "Published %s v%d (%s)\n", out.Document.ID, out.Result.Version, out.Result.Key)
	return nil
}

// rejected reports a publish refused by validation.
func (e *Extension) rejected(src string, out *service.Outcome) error {
	code := out.Report.ExitCode()
	if cmd.JSON() {
		if err := cmd.PrintJSON(publishResult{
			Report:  out.Report,
			Changes: nonNil(out.Changes),
		}); err != nil {
			return err
		}
		return &cmd.ExitError{Code: code}
	}
	if err := format.Report(cmd.Out(), format.Summary{Source: src, Doc: out.Document}, out.Report); err != nil {
		return err
	}
	return &cmd.ExitError{Code: code, Err: fmt.Errorf("%s not published", src)}
}

// readInput reads a story from a file, or stdin when src is "-".
func readInput(src string) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", src, err)
	}
	return data, nil
}

func nonNil(c []story.Change) []story.Change {
	if c == nil {
		return []story.Change{}
	}
	return c
}
