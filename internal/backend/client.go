// Package backend talks to the remote store that owns all persistence:
// table reads/writes under /rest and stored procedures under /rpc. Business
// rules living behind those procedures are opaque to this application.
package backend

import (
	"context"

	"rferreira/meubolso/internal/models"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	From       string // ISO date, inclusive
	To         string // ISO date, inclusive
	Type       models.TransactionType
}

// Client is the remote-store surface the application depends on. Calls carry
// a context but no client-side retries: every retry is a user action.
type Client interface {
	// Accounts
	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Cards
	ListCards(ctx context.Context) ([]models.Card, error)
	CreateCard(ctx context.Context, card models.Card) (models.Card, error)
	UpdateCard(ctx context.Context, card models.Card) error
	DeleteCard(ctx context.Context, id string) error

	// Categories are read-only here: their lifecycle is managed remotely.
	ListCategories(ctx context.Context) ([]models.Category, error)

	// Transactions
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// InsertTransactions performs the single batch write used by the import
	// commit. Atomicity is whatever the remote store provides for one call.
	InsertTransactions(ctx context.Context, txs []models.Transaction) error

	// Call invokes a remote stored procedure with named arguments and
	// decodes the result into out (when out is non-nil).
	Call(ctx context.Context, proc string, args map[string]interface{}, out interface{}) error
}
