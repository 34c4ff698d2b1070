// Package parser defines the extractor contract shared by all statement
// formats and the dispatcher that picks an extractor for an uploaded file.
package parser

import (
	"io"

	"rferreira/meubolso/internal/models"
)

// Extractor turns raw file content into candidate transactions. Each
// implementation understands exactly one input format (CSV/text, OFX, PDF)
// and returns typed errors from the parsererror package on failure.
type Extractor interface {
	// Extract reads the file content and returns the raw candidates found.
	Extract(r io.Reader) ([]models.RawCandidate, error)

	// Source reports which format tag this extractor stamps on candidates.
	Source() models.SourceFormat
}
