package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rferreira/meubolso/internal/importer"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/validation"
)

type sessionResponse struct {
	ID           string                     `json:"id"`
	State        importer.State             `json:"state"`
	StepPosition int                        `json:"step_position"`
	AccountID    string                     `json:"account_id,omitempty"`
	DocumentType models.DocumentType        `json:"document_type,omitempty"`
	Candidates   []models.Candidate         `json:"candidates,omitempty"`
	SelectedIDs  []int                      `json:"selected_ids,omitempty"`
	Validation   *importer.ValidationReport `json:"validation,omitempty"`
	Committed    int                        `json:"committed,omitempty"`
}

func sessionToResponse(s *importer.Session) sessionResponse {
	state := s.State()
	return sessionResponse{
		ID:           s.ID(),
		State:        state,
		StepPosition: state.Position(),
		AccountID:    s.AccountID(),
		DocumentType: s.DocumentType(),
		Candidates:   s.Candidates(),
		SelectedIDs:  s.SelectedIDs(),
		Committed:    s.Committed(),
	}
}

// importStatus maps workflow errors onto HTTP statuses. Input errors are
// inline 4xx messages, wrong-state operations are conflicts.
func importStatus(err error) int {
	var transition *importer.InvalidTransitionError
	switch {
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.Is(err, importer.ErrCandidateNotFound):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrNoAccountSelected),
		errors.Is(err, importer.ErrNoFileSelected),
		errors.Is(err, importer.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, parsererror.ErrNoTransactions):
		return http.StatusUnprocessableEntity
	}

	var invalidFormat *parsererror.InvalidFormatError
	var extraction *parsererror.DataExtractionError
	var parse *parsererror.ParseError
	if errors.As(err, &invalidFormat) || errors.As(err, &extraction) || errors.As(err, &parse) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*importer.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	session, ok := s.sessions.Get(id)
	if !ok {
		sendJSONError(w, "import session not found or expired", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID string `json:"account_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session := s.newSession()
	if body.AccountID != "" {
		if err := session.SetAccount(body.AccountID); err != nil {
			sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
			return
		}
	}
	s.sessions.Put(session)

	sendJSON(w, http.StatusCreated, sessionToResponse(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	resp := sessionToResponse(session)
	report := session.Validate()
	resp.Validation = &report
	sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	session.Cancel()
	s.sessions.Delete(session.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	maxBytes := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		sendJSONError(w, "failed to parse upload or file too large", http.StatusBadRequest)
		return
	}

	if accountID := r.FormValue("account_id"); accountID != "" {
		if err := session.SetAccount(accountID); err != nil {
			sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendJSONError(w, "failed to retrieve file from request. Ensure 'file' field is used", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if err := validation.IsValidUploadName(header.Filename); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.IsValidUploadSize(header.Size, maxBytes); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := session.Upload(r.Context(), header.Filename, file); err != nil {
		sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
		return
	}

	sendJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleEditCandidate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	candidateID, err := strconv.Atoi(chi.URLParam(r, "candidateID"))
	if err != nil {
		sendJSONError(w, "invalid candidate id", http.StatusBadRequest)
		return
	}

	var edit importer.CandidateEdit
	if err := decodeJSON(r, &edit); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := session.UpdateCandidate(candidateID, edit)
	if err != nil {
		sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
		return
	}

	sendJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var body struct {
		CandidateID *int  `json:"candidate_id,omitempty"`
		Selected    bool  `json:"selected"`
		All         *bool `json:"all,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		sendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case body.All != nil:
		err = session.SelectAll(body.Selected)
	case body.CandidateID != nil:
		err = session.Select(*body.CandidateID, body.Selected)
	default:
		sendJSONError(w, "candidate_id or all is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"selected_ids": session.SelectedIDs(),
	})
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	sendJSON(w, http.StatusOK, session.Validate())
}

func (s *Server) handleProceed(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	report, err := session.Proceed()
	if err != nil {
		sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
		return
	}
	if !report.Valid() {
		// Validation failures are data, not errors: the client renders the
		// per-candidate report inline.
		resp := sessionToResponse(session)
		resp.Validation = &report
		sendJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	sendJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := session.Back(); err != nil {
		sendJSONError(w, parsererror.UserMessage(err), importStatus(err))
		return
	}
	sendJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	result, err := session.Commit(r.Context())
	if err != nil {
		status := importStatus(err)
		if status == http.StatusInternalServerError {
			// Remote insert failure: the session stays in confirmation and
			// the same commit can be retried manually.
			status = http.StatusBadGateway
		}
		sendJSONError(w, parsererror.UserMessage(err), status)
		return
	}

	// Committed rows change balances and listings.
	s.invalidateListCache(cacheKeyAccounts, cacheKeyCards)

	resp := sessionToResponse(session)
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"session": resp,
		"result":  result,
	})
}
