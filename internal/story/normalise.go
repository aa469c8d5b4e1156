package story

import (
	"fmt"

	"github.com/jpl-au/sopstory/internal/path"
)

// Change records one reference rewrite made by Normalise.
type Change struct {
	Step   string `json:"step"`
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
	Rule   string `json:"rule,omitempty"`
}

// Normalise rewrites every reference field in place: image and action
// references through path.Apply, supplementary locations through
// path.Location. Text, ids and transitions are never touched.
//
// Returns the changes made, in step order. Normalising an already canonical
// document returns no changes.
func Normalise(d *Document, opts path.Options) []Change {
	if opts.Staging == "" {
		opts.Staging = path.DefaultStaging
	}
	var changes []Change
	record := func(s *Step, field string, dst *string, after, rule string) {
		if after == *dst {
			return
		}
		changes = append(changes, Change{Step: s.ID, Field: field, Before: *dst, After: after, Rule: rule})
		*dst = after
	}

	for i := range d.Steps {
		s := &d.Steps[i]
		if after, rule := path.Apply(s.ImageRef, opts); rule != "" {
			record(s, KeyImage, &s.ImageRef, after, rule)
		}
		if after, rule := path.Apply(s.Action.URL, opts); rule != "" {
			record(s, KeyUAPURL, &s.Action.URL, after, rule)
		}
		for j := range s.Supplementary {
			sup := &s.Supplementary[j]
			record(s, sup.Category+suffixLoc, &sup.Location, path.Location(sup.Location, opts.Staging), "location")
		}
	}
	return changes
}

func (c Change) String() string {
	return fmt.Sprintf("%s.%s: %q -> %q", c.Step, c.Field, c.Before, c.After)
}
