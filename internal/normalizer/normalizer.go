// Package normalizer turns raw extractor output into the clean, deduplicated
// candidate list presented for review. The whole stage is a pure function and
// is idempotent over its own output.
package normalizer

import (
	"sort"

	"rferreira/meubolso/internal/models"
)

// Options tune the filtering rules.
type Options struct {
	// MinDescription is the description length at or below which a record is
	// treated as noise.
	MinDescription int
}

// DefaultOptions matches the extractor defaults.
func DefaultOptions() Options {
	return Options{MinDescription: 3}
}

// Normalize canonicalizes raw candidates: absolute amounts with direction
// moved into the type (forced to expense for card invoices), noise filtering,
// first-wins deduplication on (date, description, amount) and a chronological
// sort. IDs are assigned sequentially afterwards by the import session.
func Normalize(raw []models.RawCandidate, docType models.DocumentType, opts Options) []models.Candidate {
	if opts.MinDescription <= 0 {
		opts.MinDescription = DefaultOptions().MinDescription
	}

	candidates := make([]models.Candidate, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		c := models.Candidate{
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.SignedAmount.Abs(),
			Type:        deriveType(r, docType),
			Settled:     r.Settled,
			Notes:       models.ImportNotes(r.Source),
			Source:      r.Source,
		}

		if !c.Amount.IsPositive() {
			continue
		}
		if len([]rune(c.Description)) <= opts.MinDescription {
			continue
		}

		key := c.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date < candidates[j].Date
	})

	return candidates
}

// NormalizeCandidates re-runs the canonicalization over candidates that are
// already in review. Used to prove idempotence and to re-clean after bulk
// edits.
func NormalizeCandidates(candidates []models.Candidate, docType models.DocumentType, opts Options) []models.Candidate {
	raw := make([]models.RawCandidate, 0, len(candidates))
	for _, c := range candidates {
		raw = append(raw, models.RawCandidate{
			Date:         c.Date,
			Description:  c.Description,
			SignedAmount: c.SignedAmount(),
			Settled:      c.Settled,
			Source:       c.Source,
		})
	}
	return Normalize(raw, docType, opts)
}

// deriveType maps the source sign to a transaction type. Card invoices list
// purchases unsigned, so every line is economically an expense there.
func deriveType(r models.RawCandidate, docType models.DocumentType) models.TransactionType {
	if docType == models.DocCardInvoice {
		return models.TypeExpense
	}
	if r.SignedAmount.IsNegative() {
		return models.TypeExpense
	}
	return models.TypeIncome
}
