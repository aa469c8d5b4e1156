// Package story defines the in-memory model of a procedure ("SOP story"):
// an ordered set of steps connected by labelled transitions, with one step
// designated as the start.
//
// Documents are decoded once from their source shape (story.json, produced
// by the row converter) and encoded back to the same shape. Field defaulting
// happens exactly once, at decode; everything downstream works on typed
// values. The only mutation after decode is reference normalisation (see
// Normalise), which touches reference fields and nothing else.
package story

import "strings"

// Step is a single unit of procedure content (a "frame" in the source).
type Step struct {
	ID             string
	Title          string
	ImageRef       string
	DecisionPrompt string
	Transitions    []Transition
	Narration      []string // up to three blocks, positions preserved
	Supplementary  []Supplementary
	Action         Action
	Meta           Meta

	// TransitionsMalformed is set when the source carried a transitions
	// value that was not a list of objects. The step still decodes so the
	// validator can report the defect alongside everything else.
	TransitionsMalformed bool

	extra fields // unknown source keys, preserved for re-encoding
}

// Transition is a labelled edge to another step.
type Transition struct {
	To    string
	Label string
}

// Supplementary is an auxiliary content reference (FAQ, quiz, ...) attached
// to a step. Location is the category folder, File the leaf within it.
type Supplementary struct {
	Category string
	Location string
	File     string
	Label    string
}

// Populated reports whether both halves of the reference are set.
func (s Supplementary) Populated() bool {
	return s.Location != "" && s.File != ""
}

// Href returns "location/file" with redundant slashes removed.
func (s Supplementary) Href() string {
	loc := strings.Trim(s.Location, "/")
	file := strings.TrimLeft(s.File, "/")
	if loc == "" {
		return file
	}
	return loc + "/" + file
}

// Action is an optional external action link shown with a step.
type Action struct {
	URL   string
	Label string
}

// Meta is free-form classification copied from the source rows.
type Meta struct {
	Entity    string
	Function  string
	Subentity string
}

// Document is a complete procedure.
type Document struct {
	ID      string
	StartID string
	Steps   []Step
	Meta    Meta // optional document-level classification

	index map[string]int
	extra fields
}

// New builds a Document from already-typed values and indexes its steps.
func New(id, startID string, steps []Step) *Document {
	d := &Document{ID: id, StartID: startID, Steps: steps}
	d.Reindex()
	return d
}

// Reindex rebuilds the id lookup table. Call after adding or removing steps.
// When ids repeat, lookups resolve to the first occurrence.
func (d *Document) Reindex() {
	d.index = make(map[string]int, len(d.Steps))
	for i := range d.Steps {
		id := d.Steps[i].ID
		if id == "" {
			continue
		}
		if _, ok := d.index[id]; !ok {
			d.index[id] = i
		}
	}
}

// Step returns the step with the given id.
func (d *Document) Step(id string) (*Step, bool) {
	if d.index == nil {
		d.Reindex()
	}
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return &d.Steps[i], true
}

// Has reports whether a step with the given id exists.
func (d *Document) Has(id string) bool {
	_, ok := d.Step(id)
	return ok
}

// Start returns the start step, if it exists.
func (d *Document) Start() (*Step, bool) {
	return d.Step(d.StartID)
}

// Title returns a display title derived from classification metadata:
// "function – subentity – id". Document-level meta wins over the first
// step's meta. Returns "" when nothing is known.
func (d *Document) Title() string {
	m := d.Meta
	if m == (Meta{}) && len(d.Steps) > 0 {
		m = d.Steps[0].Meta
	}
	var parts []string
	for _, p := range []string{m.Function, m.Subentity, d.ID} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " – ")
}

// TextField is one named text value on a step, used for text scanning.
type TextField struct {
	Name  string
	Value string
}

// TextFields returns the step's free-text fields in a stable order, named by
// their source keys: title, decision_question, narr1..narr3.
func (s *Step) TextFields() []TextField {
	fs := []TextField{
		{Name: KeyTitle, Value: s.Title},
		{Name: KeyDecision, Value: s.DecisionPrompt},
	}
	for i, n := range s.Narration {
		fs = append(fs, TextField{Name: narrationKey(i), Value: n})
	}
	return fs
}

// SetText writes a text field by its source key. Unknown names are ignored.
func (s *Step) SetText(name, value string) {
	switch name {
	case KeyTitle:
		s.Title = value
	case KeyDecision:
		s.DecisionPrompt = value
	default:
		for i := range s.Narration {
			if narrationKey(i) == name {
				s.Narration[i] = value
			}
		}
	}
}
