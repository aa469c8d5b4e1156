// validator.go certifies a story document before publication.
//
// Separated from the store-boundary checks (id.go, content.go) because this
// is graph and content validation over a whole document, not argument
// checking.
//
// Design: Defects are collected, never raised. A single pass over the steps
// gathers ids and per-step findings; the global checks (start id, dangling
// transitions, reachability) run afterwards against the collected id set.
// The only early returns are the two cases where nothing else is meaningful:
// a document that could not be modelled, and a document with no steps.

package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jpl-au/sopstory/internal/exists"
	"github.com/jpl-au/sopstory/internal/path"
	"github.com/jpl-au/sopstory/internal/story"
	"github.com/jpl-au/sopstory/internal/textfix"
)

// Options configures a validation run.
type Options struct {
	// Checker resolves asset references. Existence checking runs only when
	// Checker is non-nil.
	Checker exists.Checker

	// ImageRoot is the root context image references are resolved under,
	// normally the directory the rendered player lives in.
	ImageRoot string

	// SupplementaryRoot is the root context for "location/file" pairs,
	// normally the staging root.
	SupplementaryRoot string

	// Denylist overrides the corruption sequences. nil selects the defaults.
	Denylist []string

	// Reachability adds a warning for every step that cannot be reached from
	// the start step.
	Reachability bool
}

// Validator checks documents. The zero value is usable: no existence
// checks, default denylist, no reachability warnings.
type Validator struct {
	opts Options
	deny *Denylist
}

// New returns a Validator for the given options.
func New(opts Options) *Validator {
	return &Validator{opts: opts, deny: NewDenylist(opts.Denylist)}
}

// Validate inspects a decoded (and normally already normalised) document.
// The document is not modified.
func (v *Validator) Validate(ctx context.Context, d *story.Document) *Report {
	r := newReport()
	if v.deny == nil {
		v.deny = NewDenylist(v.opts.Denylist)
	}

	if len(d.Steps) == 0 {
		r.errorf(Issue{Code: CodeNoSteps}, "%s must be a non-empty list", story.KeyFrames)
		return r
	}

	seen := make(map[string]bool, len(d.Steps))
	for i := range d.Steps {
		s := &d.Steps[i]
		if s.ID == "" {
			r.errorf(Issue{Code: CodeEmptyID}, "Frame[%d] missing %s", i, story.KeyID)
			continue
		}
		if seen[s.ID] {
			r.errorf(Issue{Code: CodeDuplicateID, Step: s.ID}, "Duplicate %s: %s", story.KeyID, s.ID)
		}
		seen[s.ID] = true

		if s.TransitionsMalformed {
			r.errorf(Issue{Code: CodeMalformedTransitions, Step: s.ID, Field: story.KeyChoices},
				"Frame %s: %s must be a list of {to, label}", s.ID, story.KeyChoices)
		}

		v.text(r, s)
		if v.opts.Checker != nil {
			v.files(ctx, r, s)
		}
	}

	if !seen[d.StartID] {
		r.errorf(Issue{Code: CodeMissingStart, Target: d.StartID},
			"%s '%s' not found among %s values", story.KeyStart, d.StartID, story.KeyID)
	}

	for i := range d.Steps {
		s := &d.Steps[i]
		for j, t := range s.Transitions {
			if t.To == "" {
				r.errorf(Issue{Code: CodeMissingTarget, Step: s.ID, Field: story.KeyChoices},
					"%s: choice[%d] has no target", stepName(s, i), j)
				continue
			}
			if seen[t.To] {
				continue
			}
			r.errorf(Issue{Code: CodeDanglingTransition, Step: s.ID, Target: t.To, Field: story.KeyChoices},
				"%s: choice[%d] points to missing %s: %s", stepName(s, i), j, story.KeyID, t.To)
		}
	}

	if v.opts.Reachability && seen[d.StartID] {
		for _, id := range Unreachable(d) {
			r.warnf(Issue{Code: CodeUnreachable, Step: id},
				"Frame %s: not reachable from %s '%s'", id, story.KeyStart, d.StartID)
		}
	}
	return r
}

// text warns once per field that contains denylisted sequences.
func (v *Validator) text(r *Report, s *story.Step) {
	for _, f := range s.TextFields() {
		hits := v.deny.Match(f.Value)
		if len(hits) == 0 {
			continue
		}
		is := Issue{Code: CodeCorruptText, Step: s.ID, Field: f.Name, Matches: hits}
		if fixed, changed := textfix.Repair(f.Value); changed && len(v.deny.Match(fixed)) == 0 {
			is.Suggestion = fixed
		}
		r.warnf(is, "Frame %s: field %s contains suspicious text: %s", s.ID, f.Name, strings.Join(hits, ", "))
	}
}

// files checks the primary image (fatal) and supplementary content
// (warning) through the configured Checker.
func (v *Validator) files(ctx context.Context, r *Report, s *story.Step) {
	if ref := s.ImageRef; ref != "" && !path.IsExternal(ref) {
		ok, err := v.opts.Checker.Exists(ctx, ref, v.opts.ImageRoot)
		switch {
		case err != nil:
			r.errorf(Issue{Code: CodeCheckFailed, Step: s.ID, Field: story.KeyImage, Target: ref},
				"Frame %s: could not check image %s: %v", s.ID, ref, err)
		case !ok:
			r.errorf(Issue{Code: CodeMissingImage, Step: s.ID, Field: story.KeyImage, Target: ref},
				"Frame %s: image file not found on disk: %s", s.ID, ref)
		}
	}

	for _, sup := range s.Supplementary {
		if !sup.Populated() {
			continue
		}
		href := sup.Href()
		if path.IsExternal(href) || path.IsExternal(sup.File) {
			continue
		}
		ok, err := v.opts.Checker.Exists(ctx, href, v.opts.SupplementaryRoot)
		switch {
		case err != nil:
			r.warnf(Issue{Code: CodeCheckFailed, Step: s.ID, Field: sup.Category, Target: href},
				"Frame %s: could not check %s file %s: %v", s.ID, sup.Category, href, err)
		case !ok:
			r.warnf(Issue{Code: CodeMissingSupplementary, Step: s.ID, Field: sup.Category, Target: href},
				"Frame %s: %s file not found on disk: %s", s.ID, sup.Category, href)
		}
	}
}

func stepName(s *story.Step, i int) string {
	if s.ID == "" {
		return fmt.Sprintf("Frame[%d]", i)
	}
	return "Frame " + s.ID
}

// Source decodes raw document bytes and validates them. A document that
// cannot be modelled yields a structural report (one error per missing
// top-level key, or one describing the malformed field) and a nil document.
// Any other decode failure is returned as an error.
func Source(ctx context.Context, data []byte, opts Options) (*Report, *story.Document, error) {
	d, err := story.Decode(data)
	if err != nil {
		return structural(err)
	}
	return New(opts).Validate(ctx, d), d, nil
}

// structural converts a decode failure into a report.
func structural(err error) (*Report, *story.Document, error) {
	var me *story.MalformedDocumentError
	if !errors.As(err, &me) {
		return nil, nil, err
	}
	r := newReport()
	r.Structural = true
	if len(me.Missing) > 0 {
		for _, k := range me.Missing {
			r.errorf(Issue{Code: CodeMissingKey, Field: k}, "Missing top-level key: %s", k)
		}
		return r, nil, nil
	}
	r.errorf(Issue{Code: CodeMalformed, Field: me.Field}, "Malformed document: %s", me.Error())
	return r, nil, nil
}

// Structural builds the report for a decode failure, for callers that decode
// themselves (story.Load, story.DecodeYAML). Returns false when err is not a
// malformed-document error.
func Structural(err error) (*Report, bool) {
	r, _, e := structural(err)
	if e != nil {
		return nil, false
	}
	return r, true
}
