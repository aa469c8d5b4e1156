// Package player renders a self-contained HTML player for a story.
//
// A player is an HTML template with the story embedded as JSON. Before
// embedding, the story's references are canonicalised with the base prefix
// derived from where the player will be written, so the page works from any
// repository subpath on a static host. The template never rewrites paths.
//
// Templates mark values with any of four placeholder styles: {{KEY}},
// __KEY__, %%KEY%% and <!--KEY-->. When a template has no story placeholder
// and does not read window.SOP_STORY, a script block defining it is
// injected before </body>.
package player

import (
	"bytes"
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jpl-au/sopstory/internal/path"
	"github.com/jpl-au/sopstory/internal/story"
)

//go:embed templates/player.html
var defaultTemplate []byte

// Placeholder keys.
const (
	KeyPageTitle    = "PAGE_TITLE"
	KeyTitle        = "TITLE"
	KeyMode         = "MODE"
	KeyImageWidth   = "IMAGE_WIDTH"
	KeyExitHref     = "EXIT_HREF"
	KeyStoryWeb     = "STORY_WEB"
	KeyStoryJSON    = "STORY_JSON"
	KeyBase         = "BASE"
	KeyBuildVersion = "BUILD_VERSION"
	KeyBuildDate    = "BUILD_DT"
	KeyBuildStamp   = "BUILD_STAMP"
)

// Defaults applied when Options leave a value unset.
const (
	DefaultMode       = "dev"
	DefaultImageWidth = 65
	DefaultExitHref   = "index.html"
	titleSuffix       = "SOP Player"
	storyGlobal       = "window.SOP_STORY"
)

// BuildInfo identifies the build that produced a player. It is passed in
// explicitly so output is reproducible in tests.
type BuildInfo struct {
	Version string
	Built   time.Time
}

// Date returns the human-readable build time.
func (b BuildInfo) Date() string {
	return b.Built.Format("2006-01-02 15:04 MST")
}

// Stamp returns the compact build time used in file names.
func (b BuildInfo) Stamp() string {
	return b.Built.Format("20060102_1504")
}

// Options configures Build.
type Options struct {
	Title      string // page title; derived from story metadata when empty
	Mode       string
	ImageWidth int
	ExitHref   string
	StoryWeb   string // web path of the story file, for templates that fetch it
	Template   []byte // nil uses the built-in template

	// Output is where the player will be written. It determines the base
	// prefix unless Paths.Base is set.
	Output string
	Paths  path.Options
	Build  BuildInfo
}

// Result is a rendered player.
type Result struct {
	HTML     []byte
	Title    string
	Base     string
	Changes  []story.Change // reference rewrites applied before embedding
	Injected bool           // story script block was injected
}

// DefaultTemplate returns a copy of the built-in template.
func DefaultTemplate() []byte {
	return bytes.Clone(defaultTemplate)
}

// Build renders the player for d. The document itself is not modified.
func Build(d *story.Document, opts Options) (*Result, error) {
	base := opts.Paths.Base
	if base == "" {
		base = path.BaseRelative(opts.Output, opts.Paths.Staging)
	}
	popts := opts.Paths
	popts.Base = base

	doc, err := clone(d)
	if err != nil {
		return nil, err
	}
	changes := story.Normalise(doc, popts)

	js, err := storyJSON(doc)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle(doc)
	}
	tmpl := opts.Template
	if tmpl == nil {
		tmpl = defaultTemplate
	}
	html := string(tmpl)
	wantsInject := !references(html)

	html = Replace(html, map[string]string{
		KeyPageTitle:    title,
		KeyTitle:        title,
		KeyMode:         or(opts.Mode, DefaultMode),
		KeyImageWidth:   strconv.Itoa(orInt(opts.ImageWidth, DefaultImageWidth)),
		KeyExitHref:     or(opts.ExitHref, DefaultExitHref),
		KeyStoryWeb:     opts.StoryWeb,
		KeyStoryJSON:    js,
		KeyBase:         base,
		KeyBuildVersion: opts.Build.Version,
		KeyBuildDate:    opts.Build.Date(),
		KeyBuildStamp:   opts.Build.Stamp(),
	})
	if wantsInject {
		html = Inject(html, js)
	}
	html = Provenance(html, opts.Build)

	return &Result{
		HTML:     []byte(html),
		Title:    title,
		Base:     base,
		Changes:  changes,
		Injected: wantsInject,
	}, nil
}

// DefaultTitle derives "function – subentity – id SOP Player" from story
// metadata, or "SOP Player" when nothing is known.
func DefaultTitle(d *story.Document) string {
	if t := d.Title(); t != "" {
		return t + " " + titleSuffix
	}
	return titleSuffix
}

// Placeholders returns the four spellings of a placeholder key.
func Placeholders(key string) []string {
	return []string{"{{" + key + "}}", "__" + key + "__", "%%" + key + "%%", "<!--" + key + "-->"}
}

// Replace substitutes every placeholder style for each key in one pass, so
// replacement values are never themselves scanned for placeholders.
func Replace(tmpl string, values map[string]string) string {
	var pairs []string
	// Longer keys first so PAGE_TITLE wins over TITLE at the same position.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	for _, k := range keys {
		for _, p := range Placeholders(k) {
			pairs = append(pairs, p, values[k])
		}
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Inject inserts a script block defining window.SOP_STORY before </body>,
// or appends it when there is no closing body tag.
func Inject(html, storyJSON string) string {
	block := "\n<!-- injected by sopstory -->\n<script>\n  " + storyGlobal + " = " + storyJSON + ";\n</script>\n"
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		return html[:i] + block + html[i:]
	}
	return html + block
}

// Provenance adds a build comment after the doctype line, or at the top when
// there is none.
func Provenance(html string, b BuildInfo) string {
	comment := fmt.Sprintf("<!--\n  Built by: sopstory\n  Version: %s\n  Built: %s\n-->\n", b.Version, b.Date())
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(html)), "<!doctype") {
		if i := strings.IndexByte(html, '\n'); i >= 0 {
			return html[:i+1] + comment + html[i+1:]
		}
		return html + "\n" + comment
	}
	return comment + html
}

// Write saves rendered HTML, creating parent directories.
func Write(dest string, html []byte) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(dest, html, 0644)
}

// references reports whether the template already consumes the story,
// through a STORY_JSON placeholder or by reading window.SOP_STORY.
func references(tmpl string) bool {
	if strings.Contains(tmpl, storyGlobal) {
		return true
	}
	for _, p := range Placeholders(KeyStoryJSON) {
		if strings.Contains(tmpl, p) {
			return true
		}
	}
	return false
}

// storyJSON renders the document compactly and safe to embed in a script
// element.
func storyJSON(d *story.Document) (string, error) {
	data, err := story.Encode(d)
	if err != nil {
		return "", fmt.Errorf("encode story: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("compact story: %w", err)
	}
	return strings.ReplaceAll(buf.String(), "</", `<\/`), nil
}

func clone(d *story.Document) (*story.Document, error) {
	data, err := story.Encode(d)
	if err != nil {
		return nil, fmt.Errorf("encode story: %w", err)
	}
	return story.Decode(data)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
