package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over the remote store's HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// NewHTTPClient creates a remote-store client. timeout bounds every call.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// APIError is a non-2xx response from the remote store.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store returned %d: %s", e.StatusCode, e.Body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("Calling remote store",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "path", Value: path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote store request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read remote store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode remote store response: %w", err)
		}
	}

	return nil
}

func (c *HTTPClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	query := url.Values{"active": {"true"}}
	if err := c.do(ctx, http.MethodGet, "/rest/accounts", query, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	var created models.Account
	if err := c.do(ctx, http.MethodPost, "/rest/accounts", nil, account, &created); err != nil {
		return models.Account{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, account models.Account) error {
	return c.do(ctx, http.MethodPut, "/rest/accounts/"+account.ID, nil, account, nil)
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/accounts/"+id, nil, nil, nil)
}

func (c *HTTPClient) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := c.do(ctx, http.MethodGet, "/rest/cards", nil, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *HTTPClient) CreateCard(ctx context.Context, card models.Card) (models.Card, error) {
	var created models.Card
	if err := c.do(ctx, http.MethodPost, "/rest/cards", nil, card, &created); err != nil {
		return models.Card{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateCard(ctx context.Context, card models.Card) error {
	return c.do(ctx, http.MethodPut, "/rest/cards/"+card.ID, nil, card, nil)
}

func (c *HTTPClient) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/cards/"+id, nil, nil, nil)
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	query := url.Values{"active": {"true"}}
	if err := c.do(ctx, http.MethodGet, "/rest/categories", query, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *HTTPClient) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	query := url.Values{}
	if filter.AccountID != "" {
		query.Set("account_id", filter.AccountID)
	}
	if filter.CategoryID != "" {
		query.Set("category_id", filter.CategoryID)
	}
	if filter.From != "" {
		query.Set("from", filter.From)
	}
	if filter.To != "" {
		query.Set("to", filter.To)
	}
	if filter.Type != "" {
		query.Set("type", string(filter.Type))
	}

	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/rest/transactions", query, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *HTTPClient) CreateTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	var created models.Transaction
	if err := c.do(ctx, http.MethodPost, "/rest/transactions", nil, tx, &created); err != nil {
		return models.Transaction{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	return c.do(ctx, http.MethodPut, "/rest/transactions/"+tx.ID, nil, tx, nil)
}

func (c *HTTPClient) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rest/transactions/"+id, nil, nil, nil)
}

func (c *HTTPClient) InsertTransactions(ctx context.Context, txs []models.Transaction) error {
	return c.do(ctx, http.MethodPost, "/rest/transactions/batch", nil, txs, nil)
}

func (c *HTTPClient) Call(ctx context.Context, proc string, args map[string]interface{}, out interface{}) error {
	if args == nil {
		args = map[string]interface{}{}
	}
	return c.do(ctx, http.MethodPost, "/rpc/"+proc, nil, args, out)
}
