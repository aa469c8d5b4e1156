// cat.go implements the "sopstory cat" command for reading published stories.
//
// Separated from ledger.go to isolate output rendering: raw JSON for pipes,
// a highlighted code block on a terminal, or the step graph with --steps.
//
// Design: The target may be a story id or an 8-char version key from
// `sopstory history`, so a version seen in history can be read back
// without knowing which story it belongs to.

package ledger

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/cat"
	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/log"
)

func (e *Extension) newCatCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cat <id|key>",
		Short: "Read a published story",
		Long:  `Output the stored JSON of a published story.`,
		Args:  cobra.ExactArgs(1),
		RunE:  e.runCat,
	}
	c.Flags().IntP(extension.FlagVersion, "v", 0, "Read specific version")
	c.Flags().BoolP(extension.FlagDeleted, "D", false, "Read a retired story")
	c.Flags().BoolP(extension.FlagNumber, "n", false, "Number all output lines")
	c.Flags().Bool(extension.FlagSteps, false, "Print the step graph instead of JSON")
	return c
}

func (e *Extension) runCat(c *cobra.Command, args []string) error {
	ctx := c.Context()
	ver, _ := c.Flags().GetInt(extension.FlagVersion)
	del, _ := c.Flags().GetBool(extension.FlagDeleted)
	lineNums, _ := c.Flags().GetBool(extension.FlagNumber)
	steps, _ := c.Flags().GetBool(extension.FlagSteps)

	opts := cat.Options{
		Version:        ver,
		IncludeDeleted: del,
		LineNumbers:    lineNums,
		Steps:          steps,
	}

	target := args[0]
	var result cat.Result
	var err error

	defer func() {
		b := log.Event("ledger:cat", "read").Author(cmd.Author()).Story(target).Version(ver)
		if result.Version != nil {
			b = b.Story(result.Version.Story).ResultVersion(result.Version.Version)
		}
		b.Write(err)
	}()

	if cmd.JSON() {
		result, err = cat.Run(ctx, io.Discard, e.svc, target, opts)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", target, err))
		}
		return cmd.PrintJSON(result.Version.ToJSON(true))
	}

	// Highlight plain JSON on a terminal; numbered and step output stay raw.
	if cmd.TTY() && !lineNums && !steps {
		var buf bytes.Buffer
		result, err = cat.Run(ctx, &buf, e.svc, target, opts)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", target, err))
		}
		return format.Render(cmd.Out(), "```json\n"+buf.String()+"\n```\n", true)
	}

	result, err = cat.Run(ctx, cmd.Out(), e.svc, target, opts)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", target, err))
	}
	return nil
}
