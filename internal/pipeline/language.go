package pipeline

import "unicode"

// Detected languages. The configured set is Urdu, Hindi and English; anything
// else comes back as mixed or unknown.
const (
	LangUrdu    = "urdu"
	LangHindi   = "hindi"
	LangEnglish = "english"
	LangMixed   = "mixed"
	LangUnknown = "unknown"
)

var arabicRanges = []*unicode.RangeTable{unicode.Arabic}
var devanagariRanges = []*unicode.RangeTable{unicode.Devanagari}

// DetectLanguage guesses the dominant script of text by character-range
// counting. It only needs to be good enough to pick a translation prompt and
// to short-circuit text that is already English.
func DetectLanguage(text string) string {
	var arabic, devanagari, latin, total int
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		total++
		switch {
		case unicode.IsOneOf(arabicRanges, r):
			arabic++
		case unicode.IsOneOf(devanagariRanges, r):
			devanagari++
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			latin++
		}
	}
	if total == 0 {
		return LangUnknown
	}

	switch {
	case float64(arabic)/float64(total) > 0.3:
		return LangUrdu
	case float64(devanagari)/float64(total) > 0.3:
		return LangHindi
	case float64(latin)/float64(total) > 0.5:
		return LangEnglish
	}
	return LangMixed
}
