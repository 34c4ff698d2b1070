package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rferreira/meubolso/internal/diagnosis"
	"rferreira/meubolso/internal/planning"
)

func (s *Server) handleDiagnosis(w http.ResponseWriter, r *http.Request) {
	var answers map[string]interface{}
	if err := decodeJSON(r, &answers); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.diagnosis.Calculate(r.Context(), answers)
	if err != nil {
		var incomplete *diagnosis.IncompleteAnswersError
		if errors.As(err, &incomplete) {
			sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   "questionnaire incomplete",
				"missing": incomplete.Missing,
			})
			return
		}
		s.logger.WithError(err).Error("Diagnosis failed")
		sendJSONError(w, "failed to calculate diagnosis", http.StatusBadGateway)
		return
	}

	sendJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlanningSummary(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if !planning.ValidMonth(month) {
		sendJSONError(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	summary, err := s.planning.Summary(r.Context(), month)
	if err != nil {
		sendJSONError(w, "failed to load planning summary", http.StatusBadGateway)
		return
	}
	sendJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSetPlanningTarget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CategoryID string          `json:"category_id"`
		Month      string          `json:"month"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.planning.SetTarget(r.Context(), body.CategoryID, body.Month, body.Amount); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
