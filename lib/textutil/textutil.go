package textutil

import (
	"regexp"
	"strings"
)

// Trim removes the whitespace the page puts around cell text.
func Trim(text string) string {
	return strings.TrimSpace(text)
}

// FirstSubmatch returns the first capture group of the leftmost match of re,
// or the whole match if re has no groups.
func FirstSubmatch(re *regexp.Regexp, text string) (string, bool) {
	groups := re.FindStringSubmatch(text)
	if groups == nil {
		return "", false
	}
	if len(groups) < 2 {
		return groups[0], true
	}
	return groups[1], true
}

// Default returns fallback when value is empty.
func Default(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
