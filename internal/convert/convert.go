// Package convert builds story documents from tabular rows (CSV or XLSX
// exports of the authoring spreadsheet).
//
// Each row becomes one step. Headers are matched after trimming and
// collapsing internal whitespace, so "Next1_Code " and "Next1_Code" are the
// same column. References are canonicalised on the way in, so a converted
// document needs no separate normalisation pass.
package convert

import (
	"errors"
	"slices"
	"strings"

	"github.com/jpl-au/sopstory/internal/path"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
)

// Column headers.
const (
	ColCode       = "Code"
	ColSlideIndex = "SlideIndex"
	ColTitle      = "Title"
	ColSOPPath    = "SOP_path"
	ColImage      = "Image_sub_url"
	ColDecision   = "Deci_Question"
	ColUAPURL     = "UAP_URL"
	ColUAPLabel   = "UAP_Label"
	ColEntity     = "Entity"
	ColFunction   = "Function"
	ColSubentity  = "SubEntity"
	ColStartHere  = "Start_Here"
)

// Defaults for blank cells.
const (
	DefaultID       = "START"
	DefaultEntity   = "Palco"
	DefaultFunction = "Service"

	imageAbsPrefix = "SOP/"
)

// transitionCols pairs target and label columns, in transition order.
var transitionCols = [][2]string{
	{"Next1_Code", "Desc_Next1"},
	{"Next2_Code", "Desc_Next2"},
}

// narrationCols are the narration columns in block order.
var narrationCols = []string{"Narr1", "Narr2", "Narr3"}

// defaultCategories always appear on converted steps, even when blank.
var defaultCategories = []string{"FAQ", "Quiz"}

// startValues mark the start row in the Start_Here column.
var startValues = []string{"1", "y", "yes", "true", "start", "start_here"}

// ErrNoRows is returned when the input has a header but no data rows.
var ErrNoRows = errors.New("no data rows")

// Row is one spreadsheet row keyed by normalised header.
type Row map[string]string

// Get returns the trimmed value of a column, or "" when absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Options configures a conversion.
type Options struct {
	// ID is the document id (sop_id).
	ID string
	// Paths configures reference canonicalisation.
	Paths path.Options
}

// Header normalises a column name: trims and collapses internal whitespace.
func Header(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.Join(strings.Fields(name), " ")
}

// Convert builds a document from rows. The start step is the first row
// whose Start_Here value is truthy, else the first step.
func Convert(rows []Row, opts Options) (*story.Document, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	cats := categories(rows)

	steps := make([]story.Step, 0, len(rows))
	start := ""
	for _, r := range rows {
		s := step(r, cats, opts.Paths)
		steps = append(steps, s)
		if start == "" && IsStart(r.Get(ColStartHere)) {
			start = s.ID
		}
	}
	if start == "" {
		start = steps[0].ID
	}
	return story.New(strings.TrimSpace(opts.ID), start, steps), nil
}

// IsStart reports whether a Start_Here value marks the start row.
func IsStart(v string) bool {
	return slices.Contains(startValues, strings.ToLower(strings.TrimSpace(v)))
}

func step(r Row, cats []string, opts path.Options) story.Step {
	id := r.Get(ColCode)
	if id == "" {
		id = r.Get(ColSlideIndex)
	}
	if id == "" {
		id = DefaultID
	}

	title := r.Get(ColTitle)
	if title == "" {
		title = id
	}
	title = strings.TrimSpace(strings.ReplaceAll(title, textfix.PageBreak, " "))

	s := story.Step{
		ID:             id,
		Title:          title,
		ImageRef:       path.Canonical(ImageRef(r.Get(ColSOPPath), r.Get(ColImage)), opts),
		DecisionPrompt: r.Get(ColDecision),
		Action:         story.Action{URL: r.Get(ColUAPURL), Label: r.Get(ColUAPLabel)},
		Meta: story.Meta{
			Entity:    or(r.Get(ColEntity), DefaultEntity),
			Function:  or(r.Get(ColFunction), DefaultFunction),
			Subentity: r.Get(ColSubentity),
		},
	}

	for _, tc := range transitionCols {
		to := r.Get(tc[0])
		if to == "" {
			continue
		}
		s.Transitions = append(s.Transitions, story.Transition{To: to, Label: or(r.Get(tc[1]), to)})
	}

	narr := make([]string, len(narrationCols))
	for i, c := range narrationCols {
		narr[i] = r.Get(c)
	}
	for len(narr) > 0 && narr[len(narr)-1] == "" {
		narr = narr[:len(narr)-1]
	}
	s.Narration = narr

	for _, c := range cats {
		s.Supplementary = append(s.Supplementary, story.Supplementary{
			Category: c,
			Location: path.Location(r.Get(c+"_Loc"), opts.Staging),
			File:     r.Get(c + "_File"),
			Label:    r.Get(c + "_Label"),
		})
	}
	return s
}

// ImageRef joins the SOP path and image leaf into a rooted web path. A leaf
// already starting with SOP/ is taken as rooted on its own. Returns "" when
// there is no leaf.
func ImageRef(sopPath, leaf string) string {
	sopPath = strings.Trim(strings.ReplaceAll(sopPath, "\\", "/"), "/ ")
	leaf = strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(leaf), "\\", "/"), "/")
	if leaf == "" {
		return ""
	}

	var ref string
	switch {
	case strings.HasPrefix(leaf, imageAbsPrefix):
		ref = "/" + leaf
	case sopPath != "":
		ref = "/" + sopPath + "/" + leaf
	default:
		ref = "/" + leaf
	}
	for strings.Contains(ref, "//") {
		ref = strings.ReplaceAll(ref, "//", "/")
	}
	return ref
}

// categories returns the supplementary categories present in the headers,
// FAQ and Quiz first.
func categories(rows []Row) []string {
	cats := append([]string(nil), defaultCategories...)
	var extra []string
	for col := range rows[0] {
		for _, sfx := range []string{"_Loc", "_File", "_Label"} {
			c, ok := strings.CutSuffix(col, sfx)
			if !ok || c == "" || slices.Contains(cats, c) || slices.Contains(extra, c) {
				continue
			}
			// UAP_Label is the action link, not a category.
			if c == "UAP" {
				continue
			}
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(cats, extra...)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
