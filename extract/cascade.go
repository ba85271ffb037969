package extract

import (
	"regexp"
	"strconv"
)

// A cascade is an ordered list of patterns tried against the same text until
// one matches. Later patterns are strictly broader fallbacks of earlier ones
// and never run once a match is found. Listing markup varies across ad
// variants, so a single fixed pattern per field is too brittle; the cascade
// trades precision for coverage.

// firstMatch returns the cleaned text of the first pattern that matches.
func firstMatch(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return CleanText(m), true
		}
	}
	return "", false
}

// firstSubmatch returns the first capture group of the first pattern that
// matches.
func firstSubmatch(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return CleanText(m[1]), true
		}
	}
	return "", false
}

// firstSubmatchInt is firstSubmatch with an integer conversion on top.
func firstSubmatchInt(text string, patterns []*regexp.Regexp) (int, bool) {
	s, ok := firstSubmatch(text, patterns)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
