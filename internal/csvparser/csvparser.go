// Package csvparser extracts candidate transactions from delimited text
// statements (.csv and .txt exports). Bank exports rarely agree on delimiter,
// header or date format, so everything is detected per file.
package csvparser

import (
	"fmt"
	"io"
	"strings"

	"rferreira/meubolso/internal/dateutils"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parser"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/textutils"
)

// Default delimiters tested against the first line; the one producing the
// most columns wins.
var defaultDelimiters = []string{";", ",", "\t"}

// Keywords that mark the first line as a header rather than data.
var headerKeywords = []string{"data", "date", "dia", "lançamento", "lancamento"}

// Extractor implements parser.Extractor for delimited text statements.
type Extractor struct {
	parser.BaseParser
	delimiters  []string
	dateFormats []string
}

// NewExtractor creates a CSV extractor with the default delimiters and
// statement date formats.
func NewExtractor(logger logging.Logger) *Extractor {
	return &Extractor{
		BaseParser:  parser.NewBaseParser(logger),
		delimiters:  defaultDelimiters,
		dateFormats: dateutils.StatementFormats,
	}
}

// SetDelimiters overrides the candidate delimiters tried during detection.
func (e *Extractor) SetDelimiters(delims []string) {
	if len(delims) > 0 {
		e.delimiters = delims
	}
}

// SetDateFormats overrides the date layouts tried per line.
func (e *Extractor) SetDateFormats(layouts []string) {
	if len(layouts) > 0 {
		e.dateFormats = layouts
	}
}

// Source implements parser.Extractor.
func (e *Extractor) Source() models.SourceFormat {
	return models.SourceCSV
}

// Extract reads the whole input and parses every delimited line into a raw
// candidate. Lines with fewer than three columns are skipped; a header line
// is skipped when it contains a date-related keyword.
func (e *Extractor) Extract(r io.Reader) ([]models.RawCandidate, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV content: %w", err)
	}

	lines := splitLines(string(content))
	if len(lines) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	delimiter := e.detectDelimiter(lines[0])
	e.Logger().Debug("Detected CSV delimiter",
		logging.Field{Key: "delimiter", Value: delimiter})

	start := 0
	if isHeaderLine(lines[0]) {
		start = 1
	}

	var candidates []models.RawCandidate
	for _, line := range lines[start:] {
		columns := strings.Split(line, delimiter)
		if len(columns) < 3 {
			continue
		}

		date, parsed := dateutils.ParseStatementDate(columns[0], e.dateFormats)
		if !parsed {
			e.Logger().Debug("Unparseable statement date, defaulting to today",
				logging.Field{Key: "value", Value: columns[0]})
		}

		description := textutils.CleanDescription(columns[1])
		amount := models.ParseSignedAmount(columns[2])

		candidates = append(candidates, models.RawCandidate{
			Date:         date,
			Description:  description,
			SignedAmount: amount,
			Settled:      !dateutils.IsFuture(date),
			Source:       models.SourceCSV,
		})
	}

	if len(candidates) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	e.Logger().Info("Extracted candidates from CSV statement",
		logging.Field{Key: "count", Value: len(candidates)})

	return candidates, nil
}

func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// detectDelimiter tests each candidate delimiter against the first line and
// picks whichever yields the most columns.
func (e *Extractor) detectDelimiter(headerLine string) string {
	best := e.delimiters[0]
	bestColumns := 0
	for _, delim := range e.delimiters {
		if columns := len(strings.Split(headerLine, delim)); columns > bestColumns {
			bestColumns = columns
			best = delim
		}
	}
	return best
}

func isHeaderLine(line string) bool {
	return textutils.ContainsAny(line, headerKeywords...)
}
