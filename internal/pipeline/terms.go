package pipeline

import (
	"sort"
	"strings"
)

// TermMapping rewrites one generic English rendering to its canonical
// land-record term. Canonical terms must never appear as a From entry (or a
// substring that matches one), which is what makes Remap idempotent.
type TermMapping struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Lexicon is a read-only, longest-match-first domain vocabulary. Build it
// once at startup and share it across requests.
type Lexicon struct {
	mappings []TermMapping // sorted by len(From) descending
}

func NewLexicon(mappings []TermMapping) *Lexicon {
	ms := make([]TermMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.From == "" || m.To == "" {
			continue
		}
		ms = append(ms, TermMapping{From: lowerASCII(m.From), To: m.To})
	}
	sort.SliceStable(ms, func(i, j int) bool {
		return len(ms[i].From) > len(ms[j].From)
	})
	return &Lexicon{mappings: ms}
}

// Mappings returns a copy of the lexicon entries, longest first.
func (l *Lexicon) Mappings() []TermMapping {
	out := make([]TermMapping, len(l.mappings))
	copy(out, l.mappings)
	return out
}

// Remap substitutes domain phrases longest-match-first, ASCII
// case-insensitively on the match side, leaving unmatched text (including its
// casing and numbers) untouched. Matches are taken only on word boundaries.
func (l *Lexicon) Remap(text string) string {
	remapped, _ := l.remap(text)
	return remapped
}

// Applied reports which canonical terms Remap would introduce for text,
// deduplicated, in first-hit order.
func (l *Lexicon) Applied(text string) []string {
	_, applied := l.remap(text)
	return applied
}

func (l *Lexicon) remap(text string) (string, []string) {
	if len(l.mappings) == 0 || text == "" {
		return text, nil
	}

	lower := lowerASCII(text)
	var b strings.Builder
	b.Grow(len(text))

	var applied []string
	seen := map[string]bool{}

	i := 0
	for i < len(text) {
		matched := false
		if boundaryBefore(lower, i) {
			for _, m := range l.mappings {
				end := i + len(m.From)
				if end > len(lower) || lower[i:end] != m.From {
					continue
				}
				if !boundaryAfter(lower, end) {
					continue
				}
				b.WriteString(m.To)
				if !seen[m.To] {
					seen[m.To] = true
					applied = append(applied, m.To)
				}
				i = end
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String(), applied
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// lowerASCII folds A-Z only, so the result stays byte-aligned with the input.
// Unicode lowercasing can change byte length (U+0130 'İ' lowers to two runes)
// and would desynchronize the match offsets; non-ASCII runes match exactly.
func lowerASCII(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + 'a' - 'A'
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

// DefaultLexicon covers the generic renderings the translation capability
// tends to produce for Urdu/Hindi revenue terms. None of the canonical
// outputs contain a From entry, so remapping remapped text is a no-op.
func DefaultLexicon() *Lexicon {
	return NewLexicon([]TermMapping{
		{From: "record of rights register", To: "Jamabandi"},
		{From: "record of rights", To: "Jamabandi"},
		{From: "register of land rights", To: "Jamabandi"},
		{From: "village record keeper", To: "Patwari"},
		{From: "village accountant", To: "Patwari"},
		{From: "revenue sub-district", To: "Tehsil"},
		{From: "sub-district officer", To: "Tehsildar"},
		{From: "revenue supervisor", To: "Kanungo"},
		{From: "revenue village", To: "Mauza"},
		{From: "plot number", To: "Khasra number"},
		{From: "land parcel number", To: "Khasra number"},
		{From: "account number", To: "Khata number"},
		{From: "transfer of ownership deed", To: "Intiqal"},
		{From: "ownership transfer deed", To: "Intiqal"},
		{From: "crop inspection register", To: "Girdawari"},
		{From: "certified copy of land record", To: "Fard"},
	})
}
