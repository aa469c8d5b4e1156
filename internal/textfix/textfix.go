// Package textfix repairs text damaged by a UTF-8 to Windows-1252 round
// trip, the usual way smart quotes turn into "â€™" when rows pass through a
// spreadsheet export.
//
// Repair works sequence by sequence: a character is only rewritten when it
// and the characters after it map back to the bytes of one valid UTF-8
// sequence. Correct accented text next to damaged text is left alone.
package textfix

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/jpl-au/sopstory/internal/story"
)

// PageBreak is the spreadsheet vertical-tab artefact that leaks into cells.
const PageBreak = "_x000B_"

var cp1252 = charmap.Windows1252

// Repair returns s with mis-transcoded sequences decoded and the page break
// artefact replaced by a space. The bool reports whether anything changed.
func Repair(s string) (string, bool) {
	out := s
	if strings.Contains(out, PageBreak) {
		out = strings.ReplaceAll(out, PageBreak, " ")
	}
	if !hasHigh(out) {
		return out, out != s
	}

	rs := []rune(out)
	var b strings.Builder
	b.Grow(len(out))
	for i := 0; i < len(rs); {
		if r, n := decodeAt(rs, i); n > 0 {
			b.WriteRune(r)
			i += n
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	out = b.String()
	return out, out != s
}

// decodeAt tries to read one UTF-8 sequence from the Windows-1252 bytes of
// rs[i:]. Returns the decoded rune and the number of runes consumed, or 0
// when rs[i] does not start a damaged sequence.
func decodeAt(rs []rune, i int) (rune, int) {
	lead, ok := cp1252.EncodeRune(rs[i])
	if !ok {
		return 0, 0
	}
	var n int
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		n = 2
	case lead >= 0xE0 && lead <= 0xEF:
		n = 3
	case lead >= 0xF0 && lead <= 0xF4:
		n = 4
	default:
		return 0, 0
	}
	if i+n > len(rs) {
		return 0, 0
	}
	buf := make([]byte, 0, 4)
	buf = append(buf, lead)
	for _, r := range rs[i+1 : i+n] {
		c, ok := cp1252.EncodeRune(r)
		if !ok || c < 0x80 || c > 0xBF {
			return 0, 0
		}
		buf = append(buf, c)
	}
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError || size != n {
		return 0, 0
	}
	return r, n
}

func hasHigh(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return true
		}
	}
	return false
}

// Fix records one repaired text field.
type Fix struct {
	Step   string `json:"step"`
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Document repairs every text field of every step in place and returns the
// fixes made in step order.
func Document(d *story.Document) []Fix {
	var fixes []Fix
	for i := range d.Steps {
		s := &d.Steps[i]
		for _, f := range s.TextFields() {
			after, changed := Repair(f.Value)
			if !changed {
				continue
			}
			s.SetText(f.Name, after)
			fixes = append(fixes, Fix{Step: s.ID, Field: f.Name, Before: f.Value, After: after})
		}
		for j, t := range s.Transitions {
			if after, changed := Repair(t.Label); changed {
				s.Transitions[j].Label = after
				fixes = append(fixes, Fix{Step: s.ID, Field: "choices.label", Before: t.Label, After: after})
			}
		}
	}
	return fixes
}
