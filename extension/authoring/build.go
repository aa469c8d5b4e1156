// build.go implements the "sopstory build" command for player pages.
//
// Separated from authoring.go to isolate template resolution and player
// option flags.
//
// Design: The story is normalised for the location of the player being
// written, so the same story file builds correct players at any depth
// under the staging root. The build stamp comes from the binary's version
// information.

package authoring

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/log"
	"github.com/jpl-au/sopstory/internal/path"
	"github.com/jpl-au/sopstory/internal/player"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/version"
)

// buildResult is the JSON shape of a player build.
type buildResult struct {
	Output   string         `json:"output"`
	Story    string         `json:"story"`
	Title    string         `json:"title"`
	Base     string         `json:"base"`
	Injected bool           `json:"injected"`
	Changes  []story.Change `json:"changes"`
}

func (e *Extension) newBuildCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "build <story>",
		Short: "Build an HTML player for a story",
		Long: `Render a story into a player page using an HTML template.

The output defaults to <staging>/players/<id>_player.html. The template
comes from --template, the player.template config key, or the built-in
template.

Examples:
  sopstory build SOP-7.json
  sopstory build SOP-7.json --out site/outputs/players/v2/SOP-7_player.html --mode prod`,
		Args: cobra.ExactArgs(1),
		RunE: e.runBuild,
	}
	c.Flags().String(extension.FlagOut, "", "Output HTML path")
	c.Flags().String(extension.FlagTemplate, "", "Template HTML path")
	c.Flags().String(extension.FlagTitle, "", "Page title (default: from story metadata)")
	c.Flags().String(extension.FlagMode, player.DefaultMode, "Player mode (dev or prod)")
	c.Flags().Int(extension.FlagImageWidth, 0, "Image width in percent (default: player.image_width)")
	c.Flags().String(extension.FlagExit, "", "Exit link (default: player.exit_href)")
	c.Flags().String(extension.FlagStoryWeb, "", "Web path of the story file, for templates that fetch it")
	c.Flags().String(extension.FlagBase, "", "Ascent prefix for references (default: from the output path)")
	return c
}

func (e *Extension) runBuild(c *cobra.Command, args []string) error {
	src := args[0]
	out, _ := c.Flags().GetString(extension.FlagOut)
	tmplPath, _ := c.Flags().GetString(extension.FlagTemplate)
	title, _ := c.Flags().GetString(extension.FlagTitle)
	mode, _ := c.Flags().GetString(extension.FlagMode)
	width, _ := c.Flags().GetInt(extension.FlagImageWidth)
	exit, _ := c.Flags().GetString(extension.FlagExit)
	storyWeb, _ := c.Flags().GetString(extension.FlagStoryWeb)
	base, _ := c.Flags().GetString(extension.FlagBase)

	cfg := e.config()
	l := log.Event("authoring:build", "build").
		Author(cmd.Author()).
		File(src)

	d, err := load(src)
	if err != nil {
		l.Write(err)
		return structuralExit(err)
	}
	l.Story(d.ID)

	if out == "" {
		out = filepath.Join(cfg.Staging(), config.PlayersDir, d.ID+"_player.html")
	}
	tmpl, err := template(cfg, tmplPath)
	if err != nil {
		l.Write(err)
		return cmd.PrintJSONError(err)
	}
	if width == 0 {
		width = cfg.ImageWidth()
	}
	if exit == "" {
		exit = cfg.ExitHref()
	}
	if base == "" {
		base = cfg.Paths.Base
	}

	res, err := player.Build(d, player.Options{
		Title:      title,
		Mode:       mode,
		ImageWidth: width,
		ExitHref:   exit,
		StoryWeb:   storyWeb,
		Template:   tmpl,
		Output:     out,
		Paths:      path.Options{Staging: cfg.Staging(), Base: base, Folders: cfg.Folders()},
		Build:      version.Stamp(time.Now()),
	})
	if err == nil {
		err = player.Write(out, res.HTML)
	}
	l.Detail("output", out).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("build %s: %w", src, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(buildResult{
			Output:   out,
			Story:    d.ID,
			Title:    res.Title,
			Base:     res.Base,
			Injected: res.Injected,
			Changes:  nonNil(res.Changes),
		})
	}
	fmt.Fprintf(cmd.Out(), "Wrote %s (%d bytes, base %s, %d references rewritten)\n",
		out, len(res.HTML), res.Base, len(res.Changes))
	return nil
}

// template loads the player template. nil selects the built-in one.
func template(cfg *config.Config, flag string) ([]byte, error) {
	p := flag
	if p == "" {
		p = cfg.Player.Template
	}
	if p == "" {
		return nil, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return data, nil
}
