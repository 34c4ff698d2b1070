// Package models provides the data structures used throughout the application.
package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType partitions transactions (and categories) by money direction.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// DocumentType is the classifier's verdict over an imported document.
type DocumentType string

const (
	DocStatement   DocumentType = "statement"
	DocCardInvoice DocumentType = "card_invoice"
)

// SourceFormat tags which extractor produced a candidate. Carried for
// diagnostics only.
type SourceFormat string

const (
	SourceCSV SourceFormat = "CSV"
	SourceOFX SourceFormat = "OFX"
	SourcePDF SourceFormat = "PDF"
)

// Account is a destination account as exposed by the remote store.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// Card is a credit card registered by the user.
type Card struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	Limit      decimal.Decimal `json:"limit"`
	ClosingDay int             `json:"closing_day"`
	DueDay     int             `json:"due_day"`
	AccountID  string          `json:"account_id"`
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// Category is partitioned by transaction type: an income category can never be
// assigned to an expense and vice versa.
type Category struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          TransactionType `json:"type"`
	Active        bool            `json:"active"`
	Subcategories []Subcategory   `json:"subcategories,omitempty"`
}

// Transaction is a persistence-ready row for the remote transaction store.
// Amount is always a positive magnitude; direction lives in Type.
type Transaction struct {
	ID            string          `json:"id,omitempty"`
	AccountID     string          `json:"account_id"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id,omitempty"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Type          TransactionType `json:"type"`
	Settled       bool            `json:"settled"`
	Notes         string          `json:"notes,omitempty"`
	// Imports never infer recurrence: every imported row is a single,
	// non-recurring transaction.
	Recurring         bool `json:"recurring"`
	Installment       int  `json:"installment"`
	TotalInstallments int  `json:"total_installments"`
}

// SignedAmount reconstructs the signed source value from magnitude and type.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
