// normalise.go implements the "sopstory normalise" command.
//
// Separated from validate.go because normalise rewrites the document and
// owns the output destination handling.
//
// Design: Without --out or --in-place the normalised story goes to stdout
// so it can be piped; with a destination, stdout lists the rewrites
// instead. --diff previews the rewrites as a diff and writes nothing.

package authoring

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/diff"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/format"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/service"
	"github.com/jpl-au/sopstory/internal/story"
)

// normaliseResult is the JSON shape of a normalise run.
type normaliseResult struct {
	Story   json.RawMessage `json:"story,omitempty"`
	Written string          `json:"written,omitempty"`
	Diff    string          `json:"diff,omitempty"`
	Changes []story.Change  `json:"changes"`
}

func (e *Extension) newNormaliseCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "normalise <file>",
		Aliases: []string{"normalize"},
		Short:   "Rewrite a story's references into canonical form",
		Long: `Rewrite image, action and supplementary references into base-relative form.

The base prefix comes from --base, the paths.base config key, or the depth
of the --player output path below the staging root, in that order.

Examples:
  sopstory normalise SOP-7.json > SOP-7.norm.json
  sopstory normalise -i --player site/outputs/players/v2/SOP-7_player.html SOP-7.json
  sopstory normalise --diff SOP-7.json`,
		Args: cobra.ExactArgs(1),
		RunE: e.runNormalise,
	}
	c.Flags().String(extension.FlagOut, "", "Write the result to this file")
	c.Flags().BoolP(extension.FlagInPlace, "i", false, "Rewrite the input file")
	c.Flags().String(extension.FlagPlayer, "", "Player output path the base is derived from")
	c.Flags().String(extension.FlagBase, "", "Ascent prefix for references (e.g. ../..)")
	c.Flags().BoolP(extension.FlagDiff, "d", false, "Show the rewrites as a diff without writing")
	c.Flags().Bool(extension.FlagYAML, false, "Write YAML to stdout")
	return c
}

func (e *Extension) runNormalise(c *cobra.Command, args []string) error {
	src := args[0]
	out, _ := c.Flags().GetString(extension.FlagOut)
	inPlace, _ := c.Flags().GetBool(extension.FlagInPlace)
	player, _ := c.Flags().GetString(extension.FlagPlayer)
	base, _ := c.Flags().GetString(extension.FlagBase)
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)
	asYAML, _ := c.Flags().GetBool(extension.FlagYAML)

	dest, err := destination(src, out, inPlace)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	l := log.Event("authoring:normalise", "normalise").
		Author(cmd.Author()).
		File(src)

	data, err := readInput(src)
	if err != nil {
		l.Write(err)
		return structuralExit(err)
	}
	d, err := document.Decode(data, src)
	if err != nil {
		l.Write(err)
		return structuralExit(err)
	}
	l.Story(d.ID)

	var orig *story.Document
	if showDiff {
		// Decoding again is the cheapest deep copy.
		if orig, err = document.Decode(data, src); err != nil {
			l.Write(err)
			return cmd.PrintJSONError(err)
		}
	}

	opts := document.PathOptions(e.config(), service.CheckOptions{Base: base, Output: player})
	changes := story.Normalise(d, opts)
	l.Detail("changes", len(changes)).Detail("base", opts.Base)

	if showDiff {
		r, err := diff.Documents(orig, d, src, src+" (normalised)")
		l.Write(err)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		if cmd.JSON() {
			return cmd.PrintJSON(normaliseResult{Diff: r.Diff, Changes: nonNil(changes)})
		}
		_, err = fmt.Fprint(cmd.Out(), r.Format(cmd.TTY()))
		return err
	}

	if dest == "" {
		if cmd.JSON() {
			content, err := story.Encode(d)
			l.Write(err)
			if err != nil {
				return cmd.PrintJSONError(err)
			}
			return cmd.PrintJSON(normaliseResult{Story: content, Changes: nonNil(changes)})
		}
		err := emit(d, "", asYAML || story.FormatFor(src) == story.FormatYAML)
		l.Write(err)
		return err
	}

	err = emit(d, dest, false)
	l.File(dest).Write(err)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if cmd.JSON() {
		return cmd.PrintJSON(normaliseResult{Written: dest, Changes: nonNil(changes)})
	}
	return format.Changes(cmd.Out(), changes)
}

func nonNil(c []story.Change) []story.Change {
	if c == nil {
		return []story.Change{}
	}
	return c
}
