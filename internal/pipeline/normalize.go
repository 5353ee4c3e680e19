package pipeline

import (
	"regexp"
	"strings"
)

// Cleanup regexes are package-level so they compile once.
var (
	reSpaces       = regexp.MustCompile(`[ \t]+`)
	reBlankLines   = regexp.MustCompile(`\n{3,}`)
	rePunctBefore  = regexp.MustCompile(`\s+([,.:;])`)
	rePunctAfter   = regexp.MustCompile(`([,.:;])([A-Za-z])`)
	reCurrency     = regexp.MustCompile(`(?i)Rs\.?\s*`)
	reDoubleSpaces = regexp.MustCompile(` {2,}`)
)

// CleanText normalizes translated text before field extraction: collapses
// whitespace, tidies punctuation spacing and standardizes the rupee prefix.
// Paragraph breaks survive so label-anchored rules still see line ends.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	text = rePunctBefore.ReplaceAllString(text, "$1")
	text = rePunctAfter.ReplaceAllString(text, "$1 $2")
	text = reCurrency.ReplaceAllString(text, "Rs. ")
	text = reDoubleSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
