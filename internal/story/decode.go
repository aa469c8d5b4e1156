// decode.go maps the source document shape onto the typed model.
//
// Separated from story.go because this is the single place where source
// field names, defaulting and type checks live. Everything that can be
// defaulted is defaulted here; everything that cannot be modelled at all is
// reported as a MalformedDocumentError.
//
// Design: Decoding goes through json.RawMessage maps rather than tagged
// structs so that presence (missing key vs empty value) and type (list vs
// string) can be told apart, and so unknown keys survive a round trip.

package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source field names.
const (
	KeyDocID    = "sop_id"
	KeyStart    = "start_code"
	KeyFrames   = "frames"
	KeyMeta     = "meta"
	KeyID       = "frame_code"
	KeyTitle    = "title"
	KeyImage    = "image"
	KeyDecision = "decision_question"
	KeyChoices  = "choices"
	KeyTo       = "to"
	KeyLabel    = "label"
	KeyUAPURL   = "uap_url"
	KeyUAPLabel = "uap_label"

	KeyEntity    = "entity"
	KeyFunction  = "function"
	KeySubentity = "subentity"
)

// Supplementary reference keys are "<Category>_Loc", "<Category>_File" and
// "<Category>_Label", e.g. FAQ_Loc.
const (
	suffixLoc   = "_Loc"
	suffixFile  = "_File"
	suffixLabel = "_Label"
)

// MaxNarration is the number of narration blocks a step can carry.
const MaxNarration = 3

// RequiredKeys are the top-level keys a document cannot be modelled without.
var RequiredKeys = []string{KeyDocID, KeyStart, KeyFrames}

// knownCategories sort first, in this order, when encoding.
var knownCategories = []string{"FAQ", "Quiz"}

// fields holds raw source values keyed by field name.
type fields map[string]json.RawMessage

func narrationKey(i int) string {
	return fmt.Sprintf("narr%d", i+1)
}

// Load reads and decodes a document file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read story %s: %w", path, err)
	}
	if FormatFor(path) == FormatYAML {
		return DecodeYAML(data)
	}
	return Decode(data)
}

// DecodeYAML decodes a YAML document with the same shape as the JSON source.
func DecodeYAML(data []byte) (*Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid YAML: " + err.Error()}
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, &MalformedDocumentError{Reason: "top level is not a mapping"}
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, &MalformedDocumentError{Reason: "unsupported YAML value: " + err.Error()}
	}
	return Decode(js)
}

// Decode decodes a JSON source document.
//
// Returns *MalformedDocumentError when the required top-level keys are
// absent, when the input is not a JSON object, or when a field carries a
// type that cannot be modelled (a frame that is not an object, a title that
// is a list). A transitions value of the wrong type is not fatal here; it is
// flagged on the step for the validator.
func Decode(data []byte) (*Document, error) {
	var top fields
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		reason := "not a JSON object"
		if err != nil {
			reason += ": " + err.Error()
		}
		return nil, &MalformedDocumentError{Reason: reason}
	}

	var missing []string
	for _, k := range RequiredKeys {
		if _, ok := top[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &MalformedDocumentError{Missing: missing}
	}

	d := &Document{extra: fields{}}
	var err error
	if d.ID, err = scalar(top[KeyDocID]); err != nil {
		return nil, fieldError(KeyDocID, err)
	}
	d.ID = strings.TrimSpace(d.ID)
	if d.StartID, err = scalar(top[KeyStart]); err != nil {
		return nil, fieldError(KeyStart, err)
	}
	d.StartID = strings.TrimSpace(d.StartID)
	if raw, ok := top[KeyMeta]; ok {
		if d.Meta, err = decodeMeta(raw); err != nil {
			return nil, fieldError(KeyMeta, err)
		}
	}

	if !isKind(top[KeyFrames], '[') {
		return nil, fieldError(KeyFrames, errExpected("list"))
	}
	var frames []json.RawMessage
	if err := json.Unmarshal(top[KeyFrames], &frames); err != nil {
		return nil, fieldError(KeyFrames, err)
	}
	d.Steps = make([]Step, 0, len(frames))
	for i, raw := range frames {
		s, err := decodeStep(raw)
		if err != nil {
			return nil, fieldError(fmt.Sprintf("%s[%d]", KeyFrames, i), err)
		}
		d.Steps = append(d.Steps, s)
	}

	for k, v := range top {
		switch k {
		case KeyDocID, KeyStart, KeyFrames, KeyMeta:
		default:
			d.extra[k] = v
		}
	}

	d.Reindex()
	return d, nil
}

func decodeStep(raw json.RawMessage) (Step, error) {
	if !isKind(raw, '{') {
		return Step{}, errExpected("object")
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Step{}, err
	}

	s := Step{extra: fields{}}
	text := func(key string, dst *string) error {
		v, err := scalar(f[key])
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = v
		return nil
	}

	for key, dst := range map[string]*string{
		KeyID:       &s.ID,
		KeyTitle:    &s.Title,
		KeyImage:    &s.ImageRef,
		KeyDecision: &s.DecisionPrompt,
		KeyUAPURL:   &s.Action.URL,
		KeyUAPLabel: &s.Action.Label,
	} {
		if err := text(key, dst); err != nil {
			return Step{}, err
		}
	}
	s.ID = strings.TrimSpace(s.ID)
	s.ImageRef = strings.TrimSpace(s.ImageRef)
	s.Action.URL = strings.TrimSpace(s.Action.URL)

	narr := make([]string, MaxNarration)
	for i := range narr {
		if err := text(narrationKey(i), &narr[i]); err != nil {
			return Step{}, err
		}
	}
	for len(narr) > 0 && narr[len(narr)-1] == "" {
		narr = narr[:len(narr)-1]
	}
	s.Narration = narr

	if raw, ok := f[KeyChoices]; ok {
		s.Transitions, s.TransitionsMalformed = decodeTransitions(raw)
		if s.TransitionsMalformed {
			s.extra[KeyChoices] = raw
		}
	}

	if raw, ok := f[KeyMeta]; ok {
		m, err := decodeMeta(raw)
		if err != nil {
			return Step{}, fmt.Errorf("%s: %w", KeyMeta, err)
		}
		s.Meta = m
	}

	sup, err := decodeSupplementary(f)
	if err != nil {
		return Step{}, err
	}
	s.Supplementary = sup

	for k, v := range f {
		if !isStepKey(k) {
			s.extra[k] = v
		}
	}
	return s, nil
}

// decodeTransitions returns the transitions and whether the raw value was
// malformed (not a list, or containing non-object entries).
func decodeTransitions(raw json.RawMessage) ([]Transition, bool) {
	if !isKind(raw, '[') {
		return nil, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true
	}
	out := make([]Transition, 0, len(items))
	malformed := false
	for _, item := range items {
		var f fields
		if !isKind(item, '{') || json.Unmarshal(item, &f) != nil {
			malformed = true
			continue
		}
		to, err1 := scalar(f[KeyTo])
		label, err2 := scalar(f[KeyLabel])
		if err1 != nil || err2 != nil {
			malformed = true
			continue
		}
		to = strings.TrimSpace(to)
		label = strings.TrimSpace(label)
		if label == "" {
			label = to
		}
		out = append(out, Transition{To: to, Label: label})
	}
	return out, malformed
}

func decodeMeta(raw json.RawMessage) (Meta, error) {
	if isNull(raw) {
		return Meta{}, nil
	}
	if !isKind(raw, '{') {
		return Meta{}, errExpected("object")
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Meta{}, err
	}
	var m Meta
	var err error
	if m.Entity, err = scalar(f[KeyEntity]); err != nil {
		return Meta{}, err
	}
	if m.Function, err = scalar(f[KeyFunction]); err != nil {
		return Meta{}, err
	}
	if m.Subentity, err = scalar(f[KeySubentity]); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// decodeSupplementary collects every "<Category>_{Loc,File,Label}" group.
func decodeSupplementary(f fields) ([]Supplementary, error) {
	byCat := map[string]*Supplementary{}
	for k, raw := range f {
		cat, suffix, ok := splitSupplementaryKey(k)
		if !ok {
			continue
		}
		v, err := scalar(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		s := byCat[cat]
		if s == nil {
			s = &Supplementary{Category: cat}
			byCat[cat] = s
		}
		v = strings.TrimSpace(v)
		switch suffix {
		case suffixLoc:
			s.Location = v
		case suffixFile:
			s.File = v
		case suffixLabel:
			s.Label = v
		}
	}
	if len(byCat) == 0 {
		return nil, nil
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sortCategories(cats)
	out := make([]Supplementary, 0, len(cats))
	for _, c := range cats {
		out = append(out, *byCat[c])
	}
	return out, nil
}

func splitSupplementaryKey(k string) (cat, suffix string, ok bool) {
	for _, sfx := range []string{suffixLoc, suffixFile, suffixLabel} {
		if c, found := strings.CutSuffix(k, sfx); found && c != "" {
			return c, sfx, true
		}
	}
	return "", "", false
}

// sortCategories orders known categories first, the rest alphabetically.
func sortCategories(cats []string) {
	rank := func(c string) int {
		if i := slices.Index(knownCategories, c); i >= 0 {
			return i
		}
		return len(knownCategories)
	}
	sort.Slice(cats, func(i, j int) bool {
		ri, rj := rank(cats[i]), rank(cats[j])
		if ri != rj {
			return ri < rj
		}
		return cats[i] < cats[j]
	})
}

func isStepKey(k string) bool {
	switch k {
	case KeyID, KeyTitle, KeyImage, KeyDecision, KeyChoices, KeyUAPURL, KeyUAPLabel, KeyMeta:
		return true
	}
	for i := range MaxNarration {
		if k == narrationKey(i) {
			return true
		}
	}
	_, _, ok := splitSupplementaryKey(k)
	return ok
}

// scalar decodes a string-like value. Missing and null become "", numbers
// and booleans keep their literal text. Lists and objects are rejected.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '[', '{':
		return "", errExpected("string")
	default:
		return string(raw), nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isKind(raw json.RawMessage, open byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == open
}

// Format identifies a document serialisation.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the serialisation from a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
