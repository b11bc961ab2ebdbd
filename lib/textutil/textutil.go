package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// invisible or unusual spacing the portal likes to sprinkle into numbers and labels
var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u2007", " ",
	"\u2009", " ",
	"\u202f", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// NormalizeSpaces replaces no-break, thin and zero-width characters
// and collapses all whitespace runs into a single space.
func NormalizeSpaces(s string) string {
	s = spaceReplacer.Replace(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsAnyFold reports whether any of the markers is within s, ignoring case.
func ContainsAnyFold(s string, markers []string) bool {
	name := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(name, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
