package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRun     = regexp.MustCompile(`\d+`)
	decimalToken = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// ExtractInteger pulls the first run of digits out of locale-formatted text.
// Currency markers, grouping separators and parentheses are stripped first, so
// "Rp1.234.567" yields 1234567. Returns nil when no digits are present.
func ExtractInteger(text string) *int {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '(', ')':
			return -1
		}
		return r
	}, text)

	match := digitRun.FindString(cleaned)
	if match == "" {
		return nil
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

// ExtractFloat finds the first decimal-looking substring and canonicalizes it
// into a float. The source pages mix Indonesian ("1.234,5") and English
// ("1,234.5") separator conventions; both resolve to the same value. Returns
// nil when nothing numeric is found.
func ExtractFloat(text string) *float64 {
	match := decimalToken.FindString(text)
	if match == "" {
		return nil
	}

	f, err := strconv.ParseFloat(canonicalizeSeparators(match), 64)
	if err != nil {
		return nil
	}
	return &f
}

// canonicalizeSeparators rewrites a number that may use either separator
// convention into plain "1234.5" form. When both separators appear, the
// rightmost one is the decimal point. A lone separator followed by exactly
// three digits is treated as grouping ("1.234" == 1234), anything shorter as
// a decimal point ("4,9" == 4.9).
func canonicalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	decimalAt := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			decimalAt = lastComma
		} else {
			decimalAt = lastDot
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			decimalAt = lastComma
		}
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && len(s)-lastDot-1 != 3 {
			decimalAt = lastDot
		}
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case i == decimalAt:
			b.WriteByte('.')
		case r == '.' || r == ',':
			// grouping separator, drop
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
