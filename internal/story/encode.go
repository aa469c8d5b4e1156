// encode.go writes a Document back to its source shape.
//
// Separated from decode.go because encoding owns key order. The source files
// are reviewed by people in diffs, so keys come out in a fixed order that
// matches what the row converter produces, with unknown keys last and
// sorted.

package story

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Encode renders the document as indented JSON with a trailing newline.
// HTML characters are not escaped; the output is a data file, not markup.
func Encode(d *Document) ([]byte, error) {
	o := &object{}
	o.field(KeyDocID, d.ID)
	o.field(KeyStart, d.StartID)
	if d.Meta != (Meta{}) {
		o.raw(KeyMeta, encodeMeta(d.Meta))
	}
	var frames bytes.Buffer
	frames.WriteByte('[')
	for i := range d.Steps {
		if i > 0 {
			frames.WriteByte(',')
		}
		s, err := encodeStep(&d.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("encode step %d: %w", i, err)
		}
		frames.Write(s)
	}
	frames.WriteByte(']')
	o.raw(KeyFrames, frames.Bytes())
	o.extras(d.extra)
	if o.err != nil {
		return nil, o.err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, o.bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeYAML renders the document as YAML with the same key order as Encode.
func EncodeYAML(d *Document) ([]byte, error) {
	js, err := Encode(d)
	if err != nil {
		return nil, err
	}
	var n yaml.Node
	if err := yaml.Unmarshal(js, &n); err != nil {
		return nil, err
	}
	plain(&n)
	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Save encodes the document in the format implied by path and writes it,
// creating parent directories as needed.
func Save(path string, d *Document) error {
	var data []byte
	var err error
	if FormatFor(path) == FormatYAML {
		data, err = EncodeYAML(d)
	} else {
		data, err = Encode(d)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// EncodeStep renders one step compactly, with the same key order as Encode.
func EncodeStep(s *Step) ([]byte, error) {
	b, err := encodeStep(s)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Compact(&out, b); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeStep(s *Step) ([]byte, error) {
	o := &object{}
	o.field(KeyID, s.ID)
	o.field(KeyTitle, s.Title)
	o.field(KeyImage, s.ImageRef)
	o.field(KeyDecision, s.DecisionPrompt)
	if raw, ok := s.extra[KeyChoices]; ok && s.TransitionsMalformed {
		o.raw(KeyChoices, raw)
	} else {
		type choice struct {
			To    string `json:"to"`
			Label string `json:"label"`
		}
		cs := make([]choice, 0, len(s.Transitions))
		for _, t := range s.Transitions {
			cs = append(cs, choice{To: t.To, Label: t.Label})
		}
		o.field(KeyChoices, cs)
	}
	for i := range MaxNarration {
		v := ""
		if i < len(s.Narration) {
			v = s.Narration[i]
		}
		o.field(narrationKey(i), v)
	}
	o.field(KeyUAPURL, s.Action.URL)
	o.field(KeyUAPLabel, s.Action.Label)
	for _, sup := range s.Supplementary {
		o.field(sup.Category+suffixLoc, sup.Location)
		o.field(sup.Category+suffixFile, sup.File)
		o.field(sup.Category+suffixLabel, sup.Label)
	}
	if s.Meta != (Meta{}) {
		o.raw(KeyMeta, encodeMeta(s.Meta))
	}
	o.extras(s.extra, KeyChoices)
	if o.err != nil {
		return nil, o.err
	}
	return o.bytes(), nil
}

func encodeMeta(m Meta) json.RawMessage {
	o := &object{}
	o.field(KeyEntity, m.Entity)
	o.field(KeyFunction, m.Function)
	o.field(KeySubentity, m.Subentity)
	return o.bytes()
}

// object builds a JSON object with keys in insertion order.
type object struct {
	buf bytes.Buffer
	n   int
	err error
}

func (o *object) raw(key string, v json.RawMessage) {
	if o.n == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	o.n++
	o.buf.Write(quote(key))
	o.buf.WriteByte(':')
	o.buf.Write(v)
}

func (o *object) field(key string, v any) {
	b, err := marshal(v)
	if err != nil {
		if o.err == nil {
			o.err = fmt.Errorf("%s: %w", key, err)
		}
		return
	}
	o.raw(key, b)
}

// extras writes unknown keys in sorted order, skipping the named keys.
func (o *object) extras(f fields, skip ...string) {
	keys := make([]string, 0, len(f))
outer:
	for k := range f {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.raw(k, f[k])
	}
}

func (o *object) bytes() []byte {
	if o.n == 0 {
		return []byte("{}")
	}
	return append(o.buf.Bytes(), '}')
}

func marshal(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

func quote(s string) []byte {
	b, _ := marshal(s)
	return b
}

// plain clears the quoting styles the JSON parse left on every node so the
// YAML encoder picks its own, quoting only where a value would otherwise
// change type.
func plain(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plain(c)
	}
}
