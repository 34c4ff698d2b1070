package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RawCandidate is the direct output of a format extractor: a normalized date,
// a cleaned description and the amount still carrying its source sign.
type RawCandidate struct {
	Date         string
	Description  string
	SignedAmount decimal.Decimal
	Settled      bool
	Source       SourceFormat
}

// Candidate is an in-memory, not-yet-persisted transaction produced by the
// import pipeline and edited by the user during review. IDs are session-local
// and carry no meaning outside the owning import session.
type Candidate struct {
	ID            int             `json:"id" csv:"-"`
	Date          string          `json:"date" csv:"Date"`
	Description   string          `json:"description" csv:"Description"`
	Amount        decimal.Decimal `json:"amount" csv:"Amount"`
	Type          TransactionType `json:"type" csv:"Type"`
	AccountID     string          `json:"account_id" csv:"-"`
	CategoryID    string          `json:"category_id" csv:"-"`
	SubcategoryID string          `json:"subcategory_id" csv:"-"`
	Settled       bool            `json:"settled" csv:"Settled"`
	Notes         string          `json:"notes" csv:"Notes"`
	Source        SourceFormat    `json:"source_format" csv:"Source"`
}

// DedupKey is the duplicate-suppression key: two candidates agreeing on date,
// description and amount are the same transaction.
func (c *Candidate) DedupKey() string {
	return fmt.Sprintf("%s|%s|%s", c.Date, c.Description, c.Amount.StringFixed(2))
}

// SignedAmount reconstructs the pre-normalization signed value.
func (c *Candidate) SignedAmount() decimal.Decimal {
	if c.Type == TypeExpense {
		return c.Amount.Neg()
	}
	return c.Amount
}

// ImportNotes is the default provenance string attached to candidates.
func ImportNotes(source SourceFormat) string {
	return fmt.Sprintf("Imported from %s", source)
}
