// Package textfold folds query text and brand terms into a comparable form
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Canonical decomposition
// 3 Case folding
// 4 Remove combining marks and format chars
// 5 Width fold fullwidth to ASCII
// 6 Collapse whitespace to single spaces and trim
package textfold

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// Fold returns the folded form of s
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Terms folds a list of terms, dropping ones that fold to empty and duplicates
func Terms(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		f := Fold(t)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Matcher reports whether folded text contains any of a fixed set of terms
type Matcher struct {
	terms []string
}

// NewMatcher builds a matcher from raw terms
func NewMatcher(terms []string) *Matcher { return &Matcher{terms: Terms(terms)} }

// Len is the number of usable terms
func (m *Matcher) Len() int { return len(m.terms) }

// Terms returns the folded terms in input order
func (m *Matcher) Terms() []string { return append([]string(nil), m.terms...) }

// Match folds s and checks each term as a substring
func (m *Matcher) Match(s string) bool {
	if m == nil || len(m.terms) == 0 {
		return false
	}
	f := Fold(s)
	for _, t := range m.terms {
		if strings.Contains(f, t) {
			return true
		}
	}
	return false
}
