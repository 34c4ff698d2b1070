// Package textutils provides text cleanup helpers for extracted statement lines.
package textutils

import (
	"regexp"
	"strings"
)

var innerWhitespaceRe = regexp.MustCompile(`\s+`)

// CleanDescription trims a raw description and collapses internal whitespace
// runs to a single space.
func CleanDescription(description string) string {
	return innerWhitespaceRe.ReplaceAllString(strings.TrimSpace(description), " ")
}

// IsMeaningfulDescription reports whether a cleaned description is long enough
// to be treated as a real transaction rather than layout noise. minLength is
// the configured minimum; descriptions of that length or shorter are rejected.
func IsMeaningfulDescription(description string, minLength int) bool {
	return len([]rune(CleanDescription(description))) > minLength
}

// ContainsAny reports whether the lowercased haystack contains any of the
// given lowercased terms.
func ContainsAny(haystack string, terms ...string) bool {
	lowered := strings.ToLower(haystack)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
