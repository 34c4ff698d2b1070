package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

func TestHTTPClientListAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/accounts", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Account{
			{ID: "acc-1", Name: "Checking", Type: "checking", Active: true},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-key", 5*time.Second, &logging.MockLogger{})

	accounts, err := client.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)
}

func TestHTTPClientInsertTransactionsBatch(t *testing.T) {
	var received []models.Transaction
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/transactions/batch", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, &logging.MockLogger{})

	txs := []models.Transaction{
		{AccountID: "acc-1", Date: "2024-03-01", Description: "Groceries",
			Amount: decimal.NewFromFloat(54.90), Type: models.TypeExpense},
		{AccountID: "acc-1", Date: "2024-03-02", Description: "Salary",
			Amount: decimal.NewFromInt(5000), Type: models.TypeIncome},
	}
	require.NoError(t, client.InsertTransactions(context.Background(), txs))
	require.Len(t, received, 2)
	assert.Equal(t, "Groceries", received[0].Description)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, &logging.MockLogger{})

	_, err := client.ListCards(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestHTTPClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rpc/calculate_diagnosis", r.URL.Path)

		var args map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "u-1", args["user_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score": 72}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", 5*time.Second, &logging.MockLogger{})

	var out struct {
		Score int `json:"score"`
	}
	err := client.Call(context.Background(), "calculate_diagnosis",
		map[string]interface{}{"user_id": "u-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 72, out.Score)
}

func TestMockInsertTransactionsRecordsBatch(t *testing.T) {
	mock := NewMock()

	txs := []models.Transaction{
		{Date: "2024-01-10", Description: "Coffee", Amount: decimal.NewFromFloat(12.50), Type: models.TypeExpense},
	}
	require.NoError(t, mock.InsertTransactions(context.Background(), txs))
	require.Len(t, mock.Batches, 1)
	assert.Len(t, mock.Transactions, 1)

	mock.InsertTransactionsError = assert.AnError
	assert.Error(t, mock.InsertTransactions(context.Background(), txs))
	assert.Len(t, mock.Batches, 1)
}

func TestMockCallDecodesResult(t *testing.T) {
	mock := NewMock()
	mock.CallResults["planning_summary"] = map[string]interface{}{"total_planned": "1200.00"}

	var out struct {
		TotalPlanned string `json:"total_planned"`
	}
	require.NoError(t, mock.Call(context.Background(), "planning_summary", nil, &out))
	assert.Equal(t, "1200.00", out.TotalPlanned)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "planning_summary", mock.Calls[0].Proc)
}
