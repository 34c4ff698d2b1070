// Package classifier decides whether an imported document is a plain bank
// statement or a credit-card invoice. The verdict only steers the default
// sign-to-type mapping downstream, so a wrong guess is recoverable in review.
package classifier

import (
	"strings"

	"rferreira/meubolso/internal/config"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// Classifier scans extracted text for invoice indicator terms. The vocabulary
// and threshold are configuration: the heuristic is locale-specific and the
// borderline behavior is deliberately tunable rather than baked in.
type Classifier struct {
	terms     []string
	threshold int
	logger    logging.Logger
}

// New creates a Classifier with the given indicator vocabulary and match
// threshold. Empty values fall back to the built-in Brazilian defaults.
func New(terms []string, threshold int, logger logging.Logger) *Classifier {
	if len(terms) == 0 {
		terms = config.DefaultInvoiceTerms
	}
	if threshold < 1 {
		threshold = 3
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Classifier{
		terms:     terms,
		threshold: threshold,
		logger:    logger,
	}
}

// Classify counts how many distinct indicator terms occur in the document
// text. Reaching the threshold classifies the document as a card invoice.
func (c *Classifier) Classify(text string) models.DocumentType {
	lowered := strings.ToLower(text)

	matches := 0
	for _, term := range c.terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			matches++
			if matches >= c.threshold {
				break
			}
		}
	}

	docType := models.DocStatement
	if matches >= c.threshold {
		docType = models.DocCardInvoice
	}

	c.logger.Debug("Classified imported document",
		logging.Field{Key: "matches", Value: matches},
		logging.Field{Key: "threshold", Value: c.threshold},
		logging.Field{Key: "type", Value: string(docType)})

	return docType
}
