package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rferreira/meubolso/internal/models"
)

var _ Client = (*Mock)(nil)

// Mock is an in-memory Client for tests. Zero value is usable.
type Mock struct {
	mu sync.Mutex

	Accounts     []models.Account
	Cards        []models.Card
	Categories   []models.Category
	Transactions []models.Transaction

	// Batches records every InsertTransactions call.
	Batches [][]models.Transaction

	// CallResults maps a procedure name to the value written into out.
	CallResults map[string]interface{}
	// Calls records procedure invocations in order.
	Calls []MockCall

	ListAccountsError       error
	CreateAccountError      error
	UpdateAccountError      error
	DeleteAccountError      error
	ListCardsError          error
	CreateCardError         error
	UpdateCardError         error
	DeleteCardError         error
	ListCategoriesError     error
	ListTransactionsError   error
	CreateTransactionError  error
	UpdateTransactionError  error
	DeleteTransactionError  error
	InsertTransactionsError error
	CallError               error

	nextID int
}

// MockCall is one recorded stored-procedure invocation.
type MockCall struct {
	Proc string
	Args map[string]interface{}
}

// NewMock creates a Mock with empty state.
func NewMock() *Mock {
	return &Mock{CallResults: map[string]interface{}{}}
}

func (m *Mock) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *Mock) ListAccounts(_ context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListAccountsError != nil {
		return nil, m.ListAccountsError
	}
	return append([]models.Account(nil), m.Accounts...), nil
}

func (m *Mock) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateAccountError != nil {
		return models.Account{}, m.CreateAccountError
	}
	if account.ID == "" {
		account.ID = m.newID("acc")
	}
	m.Accounts = append(m.Accounts, account)
	return account, nil
}

func (m *Mock) UpdateAccount(_ context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateAccountError != nil {
		return m.UpdateAccountError
	}
	for i := range m.Accounts {
		if m.Accounts[i].ID == account.ID {
			m.Accounts[i] = account
			return nil
		}
	}
	return fmt.Errorf("account %s not found", account.ID)
}

func (m *Mock) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteAccountError != nil {
		return m.DeleteAccountError
	}
	for i := range m.Accounts {
		if m.Accounts[i].ID == id {
			m.Accounts = append(m.Accounts[:i], m.Accounts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("account %s not found", id)
}

func (m *Mock) ListCards(_ context.Context) ([]models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListCardsError != nil {
		return nil, m.ListCardsError
	}
	return append([]models.Card(nil), m.Cards...), nil
}

func (m *Mock) CreateCard(_ context.Context, card models.Card) (models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateCardError != nil {
		return models.Card{}, m.CreateCardError
	}
	if card.ID == "" {
		card.ID = m.newID("card")
	}
	m.Cards = append(m.Cards, card)
	return card, nil
}

func (m *Mock) UpdateCard(_ context.Context, card models.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateCardError != nil {
		return m.UpdateCardError
	}
	for i := range m.Cards {
		if m.Cards[i].ID == card.ID {
			m.Cards[i] = card
			return nil
		}
	}
	return fmt.Errorf("card %s not found", card.ID)
}

func (m *Mock) DeleteCard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteCardError != nil {
		return m.DeleteCardError
	}
	for i := range m.Cards {
		if m.Cards[i].ID == id {
			m.Cards = append(m.Cards[:i], m.Cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("card %s not found", id)
}

func (m *Mock) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	return append([]models.Category(nil), m.Categories...), nil
}

func (m *Mock) ListTransactions(_ context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTransactionsError != nil {
		return nil, m.ListTransactionsError
	}
	var out []models.Transaction
	for _, tx := range m.Transactions {
		if filter.AccountID != "" && tx.AccountID != filter.AccountID {
			continue
		}
		if filter.CategoryID != "" && tx.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.From != "" && tx.Date < filter.From {
			continue
		}
		if filter.To != "" && tx.Date > filter.To {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *Mock) CreateTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateTransactionError != nil {
		return models.Transaction{}, m.CreateTransactionError
	}
	if tx.ID == "" {
		tx.ID = m.newID("tx")
	}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

func (m *Mock) UpdateTransaction(_ context.Context, tx models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateTransactionError != nil {
		return m.UpdateTransactionError
	}
	for i := range m.Transactions {
		if m.Transactions[i].ID == tx.ID {
			m.Transactions[i] = tx
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", tx.ID)
}

func (m *Mock) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteTransactionError != nil {
		return m.DeleteTransactionError
	}
	for i := range m.Transactions {
		if m.Transactions[i].ID == id {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

func (m *Mock) InsertTransactions(_ context.Context, txs []models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertTransactionsError != nil {
		return m.InsertTransactionsError
	}
	batch := append([]models.Transaction(nil), txs...)
	m.Batches = append(m.Batches, batch)
	for _, tx := range batch {
		if tx.ID == "" {
			tx.ID = m.newID("tx")
		}
		m.Transactions = append(m.Transactions, tx)
	}
	return nil
}

func (m *Mock) Call(_ context.Context, proc string, args map[string]interface{}, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Proc: proc, Args: args})
	if m.CallError != nil {
		return m.CallError
	}
	if out == nil {
		return nil
	}
	result, ok := m.CallResults[proc]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("mock result for %s: %w", proc, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("mock result for %s: %w", proc, err)
	}
	return nil
}
