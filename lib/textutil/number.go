package textutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// optional sign, digit groups separated by regular or no-break spaces,
// then an optional fractional part after '.' or ','
var amountRegex = regexp.MustCompile(`[-+]?\d[\d \x{00a0}\x{202f}]*(?:[.,]\d+)?`)

var leadingDecimalRegex = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

var groupingRemover = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"\u2009", "",
)

// ParseAmount extracts the first locale formatted number out of text,
// "1 234,56 ₽" becomes 1234.56. It returns nil when text contains no number.
func ParseAmount(text string) *float64 {
	match := amountRegex.FindString(text)
	if match == "" {
		return nil
	}
	match = groupingRemover.Replace(match)
	match = strings.Replace(match, ",", ".", 1)

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseLeadingDecimal returns the first unsigned decimal number in text,
// without treating spaces as digit grouping.
func ParseLeadingDecimal(text string) *float64 {
	match := leadingDecimalRegex.FindString(text)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseFloatLoose parses the whole of s as a finite float, accepting a comma
// as the decimal mark and surrounding whitespace.
func ParseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
