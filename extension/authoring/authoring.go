// Package authoring provides the commands that work on story files before
// they reach the ledger: validate, normalise, convert, build, fix-text.
//
// None of them needs a ledger, so the extension is Storeless and reads the
// configuration itself. A project config applies when the command runs
// inside an initialised project; otherwise the global config or defaults.

package authoring

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpl-au/sopstory/cmd"
	"github.com/jpl-au/sopstory/extension"
	"github.com/jpl-au/sopstory/internal/config"
	"github.com/jpl-au/sopstory/internal/document"
	"github.com/jpl-au/sopstory/internal/story"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the authoring extension.
type Extension struct {
	cfg *config.Config
}

var (
	_ extension.Extension = (*Extension)(nil)
	_ extension.Storeless = (*Extension)(nil)
)

// Name returns "authoring".
func (e *Extension) Name() string { return "authoring" }

// Commands returns the authoring commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newValidateCmd(),
		e.newNormaliseCmd(),
		e.newConvertCmd(),
		e.newBuildCmd(),
		e.newFixTextCmd(),
	}
}

// NoStoreCommands lists every authoring command.
func (e *Extension) NoStoreCommands() []string {
	return []string{"validate", "normalise", "convert", "build", "fix-text"}
}

// MCPTools exposes text repair; validation and normalisation tools live in
// internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{fixTextTool()}
}

// config returns the effective configuration. A config that fails to load
// falls back to defaults so authoring still works with a broken file.
func (e *Extension) config() *config.Config {
	if e.cfg != nil {
		return e.cfg
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		cfg = &config.Config{}
	}
	e.cfg = cfg
	return cfg
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

// load reads and decodes a story, choosing YAML from the file extension.
func load(src string) (*story.Document, error) {
	data, err := readInput(src)
	if err != nil {
		return nil, err
	}
	return document.Decode(data, src)
}

// emit writes d to dest, or to the command output when dest is empty. The
// format follows dest's extension; asYAML selects YAML for stdout.
func emit(d *story.Document, dest string, asYAML bool) error {
	if dest != "" {
		if err := story.Save(dest, d); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		return nil
	}
	var data []byte
	var err error
	if asYAML {
		data, err = story.EncodeYAML(d)
	} else {
		data, err = story.Encode(d)
	}
	if err != nil {
		return err
	}
	_, err = cmd.Out().Write(data)
	return err
}

// destination resolves --out and --in-place into the file to write, or ""
// for stdout.
func destination(src, out string, inPlace bool) (string, error) {
	if !inPlace {
		return out, nil
	}
	if out != "" {
		return "", fmt.Errorf("--in-place and --out cannot be combined")
	}
	if src == "-" {
		return "", fmt.Errorf("--in-place needs a file, not stdin")
	}
	return src, nil
}
