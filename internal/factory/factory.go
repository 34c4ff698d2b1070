// Package factory creates the right extractor for an uploaded statement file.
package factory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"rferreira/meubolso/internal/csvparser"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/ofxparser"
	"rferreira/meubolso/internal/parser"
	"rferreira/meubolso/internal/pdfparser"
)

// Config carries the configurable parsing knobs into the extractors. Zero
// value means every extractor keeps its built-in defaults.
type Config struct {
	// CSVDelimiters are the candidate delimiters tried during detection.
	CSVDelimiters []string
	// DateFormats are the date layouts tried per statement line.
	DateFormats []string
}

// GetExtractor returns a new extractor for the given source format.
func GetExtractor(source models.SourceFormat, cfg Config, logger logging.Logger) (parser.Extractor, error) {
	switch source {
	case models.SourceCSV:
		ext := csvparser.NewExtractor(logger)
		ext.SetDelimiters(cfg.CSVDelimiters)
		ext.SetDateFormats(cfg.DateFormats)
		return ext, nil
	case models.SourceOFX:
		return ofxparser.NewExtractor(logger), nil
	case models.SourcePDF:
		return pdfparser.NewExtractor(logger, nil), nil
	default:
		return nil, fmt.Errorf("unknown source format: %s", source)
	}
}

// DetectFormat picks the source format for a file from its extension, falling
// back to a content sniff of the first bytes when the extension is ambiguous.
// Dispatch is explicit by format, never by polymorphic guessing inside the
// extractors themselves.
func DetectFormat(filename string, head []byte) (models.SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return models.SourceCSV, nil
	case ".ofx":
		return models.SourceOFX, nil
	case ".pdf":
		return models.SourcePDF, nil
	}

	trimmed := bytes.TrimSpace(head)
	switch {
	case bytes.HasPrefix(trimmed, []byte("%PDF")):
		return models.SourcePDF, nil
	case bytes.Contains(trimmed, []byte("<OFX")), bytes.Contains(trimmed, []byte("OFXHEADER")):
		return models.SourceOFX, nil
	case len(trimmed) > 0:
		return models.SourceCSV, nil
	}

	return "", fmt.Errorf("unsupported file type: %s", filename)
}
