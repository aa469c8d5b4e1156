// denylist.go detects known text corruption sequences.
//
// Separated because the list is data, not logic: it is configurable, and new
// pipelines surface new corruption patterns. The defaults cover UTF-8 smart
// punctuation read as Windows-1252 plus the spreadsheet page-break token.
//
// Design: Several defaults share a prefix ("â€" is the lead of every smart
// quote sequence). Matching is longest-first over non-overlapping spans, so
// a single damaged apostrophe reports "â€™" and not also "â€".

package validate

import (
	"sort"
	"strings"
)

// DefaultDenylist is the built-in set of corruption sequences.
var DefaultDenylist = []string{
	"\u00e2\u20ac\u0153", // left double quote
	"\u00e2\u20ac\u009d", // right double quote
	"\u00e2\u20ac",       // lead of any smart punctuation whose tail was lost
	"\u00e2\u20ac\u2122", // apostrophe
	"\u00e2\u20ac\u201c", // en dash
	"\u00e2\u20ac\u201d", // em dash
	"\u00e2\u20ac\u00a6", // ellipsis
	"\u00c3\u00a9",       // e acute
	"_x000B_",            // spreadsheet page break
}

// Denylist matches text against a set of sequences.
type Denylist struct {
	order []string // caller order, for reporting
	scan  []string // longest first, for matching
}

// NewDenylist builds a matcher. Empty and repeated entries are dropped. A nil
// list selects DefaultDenylist; an empty non-nil list disables matching.
func NewDenylist(seqs []string) *Denylist {
	if seqs == nil {
		seqs = DefaultDenylist
	}
	d := &Denylist{}
	seen := map[string]bool{}
	for _, s := range seqs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		d.order = append(d.order, s)
	}
	d.scan = append([]string(nil), d.order...)
	sort.SliceStable(d.scan, func(i, j int) bool { return len(d.scan[i]) > len(d.scan[j]) })
	return d
}

// Sequences returns the configured sequences in caller order.
func (d *Denylist) Sequences() []string {
	return append([]string(nil), d.order...)
}

// Match returns the distinct sequences found in text, in list order. A
// sequence found only inside the span of a longer match is not reported.
func (d *Denylist) Match(text string) []string {
	if text == "" || len(d.scan) == 0 {
		return nil
	}
	covered := make([]bool, len(text))
	found := map[string]bool{}
	for _, seq := range d.scan {
		for off := 0; off < len(text); {
			i := strings.Index(text[off:], seq)
			if i < 0 {
				break
			}
			start := off + i
			end := start + len(seq)
			if !anyCovered(covered[start:end]) {
				for k := start; k < end; k++ {
					covered[k] = true
				}
				found[seq] = true
			}
			off = start + 1
		}
	}
	if len(found) == 0 {
		return nil
	}
	var out []string
	for _, s := range d.order {
		if found[s] {
			out = append(out, s)
		}
	}
	return out
}

func anyCovered(span []bool) bool {
	for _, c := range span {
		if c {
			return true
		}
	}
	return false
}
