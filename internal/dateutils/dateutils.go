// Package dateutils provides the date parsing and formatting helpers shared by
// the statement extractors.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts used across the importers. Statement values are normalized to the
// ISO layout before they reach a candidate.
const (
	LayoutISO       = "2006-01-02"
	LayoutBrazilian = "02/01/2006"
	LayoutDashed    = "02-01-2006"
	LayoutOFX       = "20060102"
)

// StatementFormats is the ordered list of layouts tried when parsing a date
// taken from a CSV or text statement. Day-first layouts come before ISO since
// Brazilian exports are the common case.
var StatementFormats = []string{
	LayoutBrazilian,
	LayoutISO,
	LayoutDashed,
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ParseStatementDate parses a statement date using the provided layouts (or
// StatementFormats when nil) and returns it in ISO form. Unparseable values
// fall back to today, mirroring the lenient behavior expected from bank
// exports with occasional junk lines; the bool reports whether parsing
// actually succeeded.
func ParseStatementDate(dateStr string, layouts []string) (string, bool) {
	if layouts == nil {
		layouts = StatementFormats
	}

	cleaned := CleanDateString(dateStr)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(LayoutISO), true
		}
	}

	return time.Now().Format(LayoutISO), false
}

// ParseOFXDate converts an OFX timestamp (YYYYMMDD with optional time and
// timezone suffix) into ISO form.
func ParseOFXDate(dateStr string) (string, error) {
	cleaned := CleanDateString(dateStr)
	if len(cleaned) < 8 {
		return "", fmt.Errorf("OFX date too short: %q", dateStr)
	}

	t, err := time.Parse(LayoutOFX, cleaned[:8])
	if err != nil {
		return "", fmt.Errorf("unable to parse OFX date %q: %w", dateStr, err)
	}

	return t.Format(LayoutISO), nil
}

// ExpandShortDate appends the given year to a DD/MM date fragment and returns
// the ISO form. Credit-card invoices frequently omit the year.
func ExpandShortDate(shortDate string, year int) (string, error) {
	cleaned := CleanDateString(shortDate)
	t, err := time.Parse(LayoutBrazilian, fmt.Sprintf("%s/%d", cleaned, year))
	if err != nil {
		return "", fmt.Errorf("unable to expand short date %q: %w", shortDate, err)
	}
	return t.Format(LayoutISO), nil
}

// IsFuture reports whether an ISO date lies after today.
func IsFuture(isoDate string) bool {
	t, err := time.Parse(LayoutISO, isoDate)
	if err != nil {
		return false
	}
	today, _ := time.Parse(LayoutISO, time.Now().Format(LayoutISO))
	return t.After(today)
}

// CleanDateString trims and collapses whitespace in a raw date value.
func CleanDateString(dateStr string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
