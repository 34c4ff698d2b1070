package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/models"
)

const (
	cacheKeyAccounts   = "accounts"
	cacheKeyCards      = "cards"
	cacheKeyCategories = "categories"
)

// remoteStatus picks the response status for a remote-store failure.
func remoteStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (s *Server) invalidateListCache(keys ...string) {
	for _, key := range keys {
		s.listCache.Delete(key)
	}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.listCache.Get(cacheKeyAccounts); ok {
		sendJSON(w, http.StatusOK, cached)
		return
	}

	accounts, err := s.backend.ListAccounts(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list accounts")
		sendJSONError(w, "failed to list accounts", remoteStatus(err))
		return
	}

	s.listCache.Set(cacheKeyAccounts, accounts, cache.DefaultExpiration)
	sendJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := decodeJSON(r, &account); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.backend.CreateAccount(r.Context(), account)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create account")
		sendJSONError(w, "failed to create account", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	sendJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := decodeJSON(r, &account); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	account.ID = chi.URLParam(r, "id")

	if err := s.backend.UpdateAccount(r.Context(), account); err != nil {
		s.logger.WithError(err).Error("Failed to update account")
		sendJSONError(w, "failed to update account", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	sendJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.WithError(err).Error("Failed to delete account")
		sendJSONError(w, "failed to delete account", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.listCache.Get(cacheKeyCards); ok {
		sendJSON(w, http.StatusOK, cached)
		return
	}

	cards, err := s.backend.ListCards(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list cards")
		sendJSONError(w, "failed to list cards", remoteStatus(err))
		return
	}

	s.listCache.Set(cacheKeyCards, cards, cache.DefaultExpiration)
	sendJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var card models.Card
	if err := decodeJSON(r, &card); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.backend.CreateCard(r.Context(), card)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create card")
		sendJSONError(w, "failed to create card", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyCards)
	sendJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var card models.Card
	if err := decodeJSON(r, &card); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	card.ID = chi.URLParam(r, "id")

	if err := s.backend.UpdateCard(r.Context(), card); err != nil {
		s.logger.WithError(err).Error("Failed to update card")
		sendJSONError(w, "failed to update card", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyCards)
	sendJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.WithError(err).Error("Failed to delete card")
		sendJSONError(w, "failed to delete card", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyCards)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.listCache.Get(cacheKeyCategories); ok {
		sendJSON(w, http.StatusOK, cached)
		return
	}

	categories, err := s.backend.ListCategories(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list categories")
		sendJSONError(w, "failed to list categories", remoteStatus(err))
		return
	}

	s.listCache.Set(cacheKeyCategories, categories, cache.DefaultExpiration)
	sendJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := backend.TransactionFilter{
		AccountID:  query.Get("account_id"),
		CategoryID: query.Get("category_id"),
		From:       query.Get("from"),
		To:         query.Get("to"),
		Type:       models.TransactionType(query.Get("type")),
	}

	// Transaction listings are not cached: they change on every commit and
	// the filter space is unbounded.
	txs, err := s.backend.ListTransactions(r.Context(), filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list transactions")
		sendJSONError(w, "failed to list transactions", remoteStatus(err))
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	sendJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.backend.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to create transaction")
		sendJSONError(w, "failed to create transaction", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	sendJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tx.ID = chi.URLParam(r, "id")

	if err := s.backend.UpdateTransaction(r.Context(), tx); err != nil {
		s.logger.WithError(err).Error("Failed to update transaction")
		sendJSONError(w, "failed to update transaction", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	sendJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.WithError(err).Error("Failed to delete transaction")
		sendJSONError(w, "failed to delete transaction", remoteStatus(err))
		return
	}

	s.invalidateListCache(cacheKeyAccounts)
	w.WriteHeader(http.StatusNoContent)
}
