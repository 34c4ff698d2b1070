// Package ofxparser extracts candidate transactions from OFX files. OFX 1.x
// is SGML and handled with block regexes; OFX 2.x is well-formed XML and goes
// through XPath first.
package ofxparser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"rferreira/meubolso/internal/dateutils"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parser"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/textutils"
	"rferreira/meubolso/internal/xmlutils"
)

var (
	stmtTrnRe  = regexp.MustCompile(`(?s)<STMTTRN>(.*?)</STMTTRN>`)
	dtPostedRe = regexp.MustCompile(`<DTPOSTED>([^<\r\n]*)`)
	trnAmtRe   = regexp.MustCompile(`<TRNAMT>([^<\r\n]*)`)
	memoRe     = regexp.MustCompile(`<MEMO>([^<\r\n]*)`)
)

// Extractor implements parser.Extractor for OFX statements.
type Extractor struct {
	parser.BaseParser
}

// NewExtractor creates an OFX extractor.
func NewExtractor(logger logging.Logger) *Extractor {
	return &Extractor{BaseParser: parser.NewBaseParser(logger)}
}

// Source implements parser.Extractor.
func (e *Extractor) Source() models.SourceFormat {
	return models.SourceOFX
}

// Extract parses every STMTTRN block in the document.
func (e *Extractor) Extract(r io.Reader) ([]models.RawCandidate, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading OFX content: %w", err)
	}

	text := string(content)
	if !strings.Contains(text, "<STMTTRN>") {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: "OFX",
			Msg:            "no STMTTRN blocks present",
		}
	}

	var candidates []models.RawCandidate
	if isXMLOFX(text) {
		candidates, err = e.extractXML(text)
		if err != nil {
			e.Logger().WithError(err).Warn("XPath extraction failed, falling back to SGML parsing")
			candidates = nil
		}
	}
	if candidates == nil {
		candidates = e.extractSGML(text)
	}

	if len(candidates) == 0 {
		return nil, parsererror.ErrNoTransactions
	}

	e.Logger().Info("Extracted candidates from OFX statement",
		logging.Field{Key: "count", Value: len(candidates)})

	return candidates, nil
}

// extractSGML walks the STMTTRN blocks with regexes. OFX 1.x tags are not
// required to be closed, so each field regex stops at the next tag or line end.
func (e *Extractor) extractSGML(text string) []models.RawCandidate {
	var candidates []models.RawCandidate
	for _, match := range stmtTrnRe.FindAllStringSubmatch(text, -1) {
		block := match[1]
		candidate, ok := e.buildCandidate(
			firstGroup(dtPostedRe, block),
			firstGroup(trnAmtRe, block),
			firstGroup(memoRe, block),
		)
		if ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// extractXML uses XPath over an OFX 2.x document, zipping the parallel field
// extractions in document order.
func (e *Extractor) extractXML(text string) ([]models.RawCandidate, error) {
	root, err := xmlutils.LoadXML(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	dates, err := xmlutils.ExtractFromXML(root, xmlutils.XPathPostedDate)
	if err != nil {
		return nil, err
	}
	amounts, _ := xmlutils.ExtractFromXML(root, xmlutils.XPathAmount)
	memos, _ := xmlutils.ExtractFromXML(root, xmlutils.XPathMemo)

	var candidates []models.RawCandidate
	for i := range dates {
		candidate, ok := e.buildCandidate(
			dates[i],
			xmlutils.GetOrEmpty(amounts, i),
			xmlutils.GetOrEmpty(memos, i),
		)
		if ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}

func (e *Extractor) buildCandidate(rawDate, rawAmount, rawMemo string) (models.RawCandidate, bool) {
	date, err := dateutils.ParseOFXDate(rawDate)
	if err != nil {
		e.Logger().WithError(err).Debug("Skipping STMTTRN block with bad date",
			logging.Field{Key: "value", Value: rawDate})
		return models.RawCandidate{}, false
	}

	return models.RawCandidate{
		Date:         date,
		Description:  textutils.CleanDescription(rawMemo),
		SignedAmount: models.ParseSignedAmount(rawAmount),
		// A posted transaction only counts as settled once its date has
		// actually arrived.
		Settled: !dateutils.IsFuture(date),
		Source:  models.SourceOFX,
	}, true
}

func firstGroup(re *regexp.Regexp, block string) string {
	if m := re.FindStringSubmatch(block); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func isXMLOFX(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<?xml")
}
