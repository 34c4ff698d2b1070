// Package pdfparser extracts candidate transactions from the text layer of
// PDF statements and credit-card invoices. Banks lay the same three columns
// out in different orders, so each line is tried against a small set of
// alternative patterns.
package pdfparser

import (
	"io"
	"regexp"
	"strings"
	"time"

	"rferreira/meubolso/internal/dateutils"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parser"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/textutils"
)

const amountPattern = `-?\d{1,3}(?:\.\d{3})*,\d{2}`

// The three column orders seen in Brazilian statements and invoices, tried in
// this order per line. Short dates (DD/MM) belong to invoices that omit the
// year.
var (
	dateDescAmountRe      = regexp.MustCompile(`^\s*(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(` + amountPattern + `)\s*$`)
	shortDateDescAmountRe = regexp.MustCompile(`^\s*(\d{2}/\d{2})\s+(.+?)\s+(` + amountPattern + `)\s*$`)
	amountDescShortDateRe = regexp.MustCompile(`^\s*(` + amountPattern + `)\s+(.+?)\s+(\d{2}/\d{2})\s*$`)
)

// minDescriptionLength rejects layout noise captured as a description.
const minDescriptionLength = 3

// Extractor implements parser.Extractor for PDF documents.
type Extractor struct {
	parser.BaseParser
	textExtractor TextExtractor
	now           func() time.Time
}

// NewExtractor creates a PDF extractor. A nil TextExtractor selects the
// production pdftotext implementation.
func NewExtractor(logger logging.Logger, textExtractor TextExtractor) *Extractor {
	if textExtractor == nil {
		textExtractor = NewPdftotextExtractor()
	}
	return &Extractor{
		BaseParser:    parser.NewBaseParser(logger),
		textExtractor: textExtractor,
		now:           time.Now,
	}
}

// Source implements parser.Extractor.
func (e *Extractor) Source() models.SourceFormat {
	return models.SourcePDF
}

// Extract renders the PDF to text and matches every line against the known
// transaction patterns.
func (e *Extractor) Extract(r io.Reader) ([]models.RawCandidate, error) {
	if err := e.textExtractor.EnsureAvailable(); err != nil {
		return nil, &parsererror.DataExtractionError{
			Field:  "pdf text layer",
			Reason: err.Error(),
		}
	}

	text, err := e.textExtractor.ExtractText(r)
	if err != nil {
		return nil, &parsererror.ParseError{
			Parser: "PDF",
			Field:  "text extraction",
			Err:    err,
		}
	}

	candidates := e.ParseText(text)
	if len(candidates) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	e.Logger().Info("Extracted candidates from PDF document",
		logging.Field{Key: "count", Value: len(candidates)})

	return candidates, nil
}

// ParseText runs the line patterns over already-extracted text. Exposed so
// the classifier and the extractor share a single text rendering pass.
func (e *Extractor) ParseText(text string) []models.RawCandidate {
	var candidates []models.RawCandidate

	for _, line := range strings.Split(text, "\n") {
		candidate, ok := e.parseLine(line)
		if ok {
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

func (e *Extractor) parseLine(line string) (models.RawCandidate, bool) {
	var rawDate, rawDescription, rawAmount string
	shortDate := false

	switch {
	case dateDescAmountRe.MatchString(line):
		m := dateDescAmountRe.FindStringSubmatch(line)
		rawDate, rawDescription, rawAmount = m[1], m[2], m[3]
	case shortDateDescAmountRe.MatchString(line):
		m := shortDateDescAmountRe.FindStringSubmatch(line)
		rawDate, rawDescription, rawAmount = m[1], m[2], m[3]
		shortDate = true
	case amountDescShortDateRe.MatchString(line):
		m := amountDescShortDateRe.FindStringSubmatch(line)
		rawAmount, rawDescription, rawDate = m[1], m[2], m[3]
		shortDate = true
	default:
		return models.RawCandidate{}, false
	}

	amount, ok := models.ParseBrazilianAmount(rawAmount)
	if !ok || amount.IsZero() {
		return models.RawCandidate{}, false
	}

	description := textutils.CleanDescription(rawDescription)
	if !textutils.IsMeaningfulDescription(description, minDescriptionLength) {
		return models.RawCandidate{}, false
	}

	var date string
	if shortDate {
		expanded, err := dateutils.ExpandShortDate(rawDate, e.now().Year())
		if err != nil {
			return models.RawCandidate{}, false
		}
		date = expanded
	} else {
		parsed, ok := dateutils.ParseStatementDate(rawDate, nil)
		if !ok {
			return models.RawCandidate{}, false
		}
		date = parsed
	}

	return models.RawCandidate{
		Date:         date,
		Description:  description,
		SignedAmount: amount,
		Settled:      !dateutils.IsFuture(date),
		Source:       models.SourcePDF,
	}, true
}
