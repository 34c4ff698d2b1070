// Package importer implements the statement import workflow: a per-session
// state machine that takes an uploaded document through extraction,
// normalization, review and the final batch commit.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/categorizer"
	"rferreira/meubolso/internal/classifier"
	"rferreira/meubolso/internal/factory"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/normalizer"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/pdfparser"
	"rferreira/meubolso/internal/textutils"
)

// Input errors block progression and are shown inline.
var (
	ErrNoAccountSelected = errors.New("no destination account selected")
	ErrNoFileSelected    = errors.New("no file selected")
	ErrNothingSelected   = errors.New("no candidates selected for import")
	ErrCandidateNotFound = errors.New("candidate not found")
)

// InvalidTransitionError reports a workflow operation attempted in the wrong
// state.
type InvalidTransitionError struct {
	From State
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("operation %s not allowed in state %s", e.Op, e.From)
}

// Suggester proposes categories for extracted candidates. Satisfied by
// categorizer.Categorizer; nil disables suggestions.
type Suggester interface {
	Suggest(ctx context.Context, candidate models.Candidate, available []models.Category) (categorizer.Resolved, bool)
	Flush() error
}

// Deps are the collaborators a session needs.
type Deps struct {
	Backend       backend.Client
	Classifier    *classifier.Classifier
	Suggester     Suggester
	TextExtractor pdfparser.TextExtractor
	Extract       factory.Config
	Normalize     normalizer.Options
	Logger        logging.Logger
}

// Session is one import workflow run. All methods are safe for concurrent
// use; the session serializes every operation behind one mutex.
type Session struct {
	mu sync.Mutex

	id    string
	state State
	deps  Deps

	accountID string
	fileName  string
	source    models.SourceFormat
	docType   models.DocumentType

	// Candidate arena keyed by session-local id. order preserves the
	// normalized (chronological) ordering; edits never renumber rows.
	arena    map[int]*models.Candidate
	order    []int
	selected map[int]bool
	nextID   int

	committed int

	sanitizer *bluemonday.Policy
}

// NewSession creates a session in the upload state.
func NewSession(deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logging.GetLogger()
	}
	if deps.Classifier == nil {
		deps.Classifier = classifier.New(nil, 0, deps.Logger)
	}
	if deps.TextExtractor == nil {
		deps.TextExtractor = pdfparser.NewPdftotextExtractor()
	}
	return &Session{
		id:        uuid.NewString(),
		state:     StateUpload,
		deps:      deps,
		arena:     make(map[int]*models.Candidate),
		selected:  make(map[int]bool),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current workflow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccountID returns the selected destination account.
func (s *Session) AccountID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountID
}

// DocumentType returns the classifier's verdict for the uploaded file.
func (s *Session) DocumentType() models.DocumentType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docType
}

// Committed returns how many rows the commit inserted.
func (s *Session) Committed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// SetAccount selects the destination account. Only meaningful before the
// upload; candidates already extracted keep their account reference in sync.
func (s *Session) SetAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSuccess {
		return &InvalidTransitionError{From: s.state, Op: "set_account"}
	}
	s.accountID = accountID
	for _, c := range s.arena {
		c.AccountID = accountID
	}
	return nil
}

// Upload runs the extraction pipeline over the file and, on success,
// transitions upload -> analysis. Any extraction failure leaves the session
// in upload.
func (s *Session) Upload(ctx context.Context, fileName string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUpload {
		return &InvalidTransitionError{From: s.state, Op: "upload"}
	}
	if s.accountID == "" {
		return ErrNoAccountSelected
	}
	if fileName == "" || r == nil {
		return ErrNoFileSelected
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}

	source, err := factory.DetectFormat(fileName, data)
	if err != nil {
		return err
	}

	raw, docType, err := s.extract(source, fileName, data)
	if err != nil {
		return err
	}

	candidates := normalizer.Normalize(raw, docType, s.deps.Normalize)
	if len(candidates) == 0 {
		return parsererror.ErrNoTransactions
	}

	s.fileName = fileName
	s.source = source
	s.docType = docType
	s.arena = make(map[int]*models.Candidate, len(candidates))
	s.order = s.order[:0]
	s.selected = make(map[int]bool, len(candidates))
	s.nextID = 0

	for i := range candidates {
		s.nextID++
		c := candidates[i]
		c.ID = s.nextID
		c.AccountID = s.accountID
		s.arena[c.ID] = &c
		s.order = append(s.order, c.ID)
		s.selected[c.ID] = true
	}

	s.suggestCategories(ctx)

	s.state = StateAnalysis
	s.deps.Logger.Info("Document extracted",
		logging.Field{Key: "session", Value: s.id},
		logging.Field{Key: "file", Value: fileName},
		logging.Field{Key: "format", Value: source},
		logging.Field{Key: "document_type", Value: docType},
		logging.Field{Key: "candidates", Value: len(candidates)})
	return nil
}

// extract dispatches to the right extractor. PDFs are special: the text is
// pulled once and shared between the classifier and the line parser.
func (s *Session) extract(source models.SourceFormat, fileName string, data []byte) ([]models.RawCandidate, models.DocumentType, error) {
	if source == models.SourcePDF {
		if err := s.deps.TextExtractor.EnsureAvailable(); err != nil {
			return nil, "", &parsererror.DataExtractionError{
				FileName: fileName,
				Field:    "pdf_tooling",
				Reason:   err.Error(),
			}
		}
		text, err := s.deps.TextExtractor.ExtractText(bytes.NewReader(data))
		if err != nil {
			return nil, "", &parsererror.ParseError{Parser: "pdf", Err: err}
		}
		docType := s.deps.Classifier.Classify(text)
		ext := pdfparser.NewExtractor(s.deps.Logger, s.deps.TextExtractor)
		raw := ext.ParseText(text)
		if len(raw) == 0 {
			return nil, "", parsererror.ErrNoTransactions
		}
		return raw, docType, nil
	}

	docType := s.deps.Classifier.Classify(string(data))
	ext, err := factory.GetExtractor(source, s.deps.Extract, s.deps.Logger)
	if err != nil {
		return nil, "", err
	}
	raw, err := ext.Extract(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return raw, docType, nil
}

// suggestCategories pre-fills category references for extracted candidates.
// Failures here are soft: review simply starts without suggestions.
func (s *Session) suggestCategories(ctx context.Context) {
	if s.deps.Suggester == nil || s.deps.Backend == nil {
		return
	}

	categories, err := s.deps.Backend.ListCategories(ctx)
	if err != nil {
		s.deps.Logger.WithError(err).Warn("Failed to list categories for suggestions")
		return
	}

	for _, id := range s.order {
		c := s.arena[id]
		resolved, ok := s.deps.Suggester.Suggest(ctx, *c, categories)
		if !ok {
			continue
		}
		c.CategoryID = resolved.CategoryID
		c.SubcategoryID = resolved.SubcategoryID
	}
}

// Candidates returns the current candidate list in chronological order.
func (s *Session) Candidates() []models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Candidate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.arena[id])
	}
	return out
}

// SelectedIDs returns the ids currently marked for commit, sorted.
func (s *Session) SelectedIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.selected))
	for id, sel := range s.selected {
		if sel {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Select marks or unmarks one candidate for inclusion in the commit.
func (s *Session) Select(id int, include bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnalysis {
		return &InvalidTransitionError{From: s.state, Op: "select"}
	}
	if _, ok := s.arena[id]; !ok {
		return fmt.Errorf("%w: %d", ErrCandidateNotFound, id)
	}
	s.selected[id] = include
	return nil
}

// SelectAll marks or unmarks every candidate.
func (s *Session) SelectAll(include bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnalysis {
		return &InvalidTransitionError{From: s.state, Op: "select_all"}
	}
	for id := range s.arena {
		s.selected[id] = include
	}
	return nil
}

// CandidateEdit carries the fields of one review edit; nil means unchanged.
type CandidateEdit struct {
	Date          *string                 `json:"date,omitempty"`
	Description   *string                 `json:"description,omitempty"`
	Amount        *decimal.Decimal        `json:"amount,omitempty"`
	Type          *models.TransactionType `json:"type,omitempty"`
	CategoryID    *string                 `json:"category_id,omitempty"`
	SubcategoryID *string                 `json:"subcategory_id,omitempty"`
	Settled       *bool                   `json:"settled,omitempty"`
	Notes         *string                 `json:"notes,omitempty"`
}

// UpdateCandidate applies an edit to one candidate. Changing the type
// invalidates the previously chosen category and subcategory: they belong to
// a type-partitioned list and must be reselected.
func (s *Session) UpdateCandidate(id int, edit CandidateEdit) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnalysis {
		return models.Candidate{}, &InvalidTransitionError{From: s.state, Op: "edit"}
	}
	c, ok := s.arena[id]
	if !ok {
		return models.Candidate{}, fmt.Errorf("%w: %d", ErrCandidateNotFound, id)
	}

	if edit.Type != nil && *edit.Type != c.Type {
		c.Type = *edit.Type
		c.CategoryID = ""
		c.SubcategoryID = ""
	}
	if edit.Date != nil {
		c.Date = strings.TrimSpace(*edit.Date)
	}
	if edit.Description != nil {
		c.Description = textutils.CleanDescription(s.sanitizer.Sanitize(*edit.Description))
	}
	if edit.Amount != nil {
		c.Amount = edit.Amount.Abs()
	}
	if edit.CategoryID != nil {
		c.CategoryID = *edit.CategoryID
	}
	if edit.SubcategoryID != nil {
		c.SubcategoryID = *edit.SubcategoryID
	}
	if edit.Settled != nil {
		c.Settled = *edit.Settled
	}
	if edit.Notes != nil {
		c.Notes = strings.TrimSpace(s.sanitizer.Sanitize(*edit.Notes))
	}

	return *c, nil
}

// Proceed advances analysis -> confirmation. The transition requires a
// non-empty selection with zero validation errors.
func (s *Session) Proceed() (ValidationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnalysis {
		return ValidationReport{}, &InvalidTransitionError{From: s.state, Op: "proceed"}
	}

	report := s.validateSelected()
	if len(s.selectedInOrder()) == 0 {
		return report, ErrNothingSelected
	}
	if !report.Valid() {
		return report, nil
	}

	s.state = StateConfirmation
	return report, nil
}

// Back navigates one step backwards. Going back to upload discards the
// extracted candidates.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAnalysis:
		s.resetLocked()
		return nil
	case StateConfirmation:
		s.state = StateAnalysis
		return nil
	default:
		return &InvalidTransitionError{From: s.state, Op: "back"}
	}
}

// Cancel discards all in-memory candidates and resets to upload. Valid in
// any state.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = StateUpload
	s.arena = make(map[int]*models.Candidate)
	s.order = nil
	s.selected = make(map[int]bool)
	s.nextID = 0
	s.fileName = ""
	s.source = ""
	s.docType = ""
	s.committed = 0
}

// CommitResult is the outcome of a successful commit.
type CommitResult struct {
	Inserted int              `json:"inserted"`
	Accounts []models.Account `json:"accounts,omitempty"`
}

// Commit maps the selected candidates into persistence rows and inserts them
// as one batch. Every error keeps the session in confirmation so the user can
// retry the same action. On success account balances are refreshed by
// re-querying the remote store.
func (s *Session) Commit(ctx context.Context) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConfirmation {
		return CommitResult{}, &InvalidTransitionError{From: s.state, Op: "commit"}
	}

	ids := s.selectedInOrder()
	if len(ids) == 0 {
		return CommitResult{}, ErrNothingSelected
	}

	rows := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, toTransaction(*s.arena[id]))
	}

	if err := s.deps.Backend.InsertTransactions(ctx, rows); err != nil {
		s.deps.Logger.WithError(err).Error("Batch insert failed",
			logging.Field{Key: "session", Value: s.id},
			logging.Field{Key: "rows", Value: len(rows)})
		return CommitResult{}, fmt.Errorf("failed to insert transactions: %w", err)
	}

	s.state = StateSuccess
	s.committed = len(rows)

	result := CommitResult{Inserted: len(rows)}
	accounts, err := s.deps.Backend.ListAccounts(ctx)
	if err != nil {
		s.deps.Logger.WithError(err).Warn("Failed to refresh accounts after commit")
	} else {
		result.Accounts = accounts
	}

	if s.deps.Suggester != nil {
		if err := s.deps.Suggester.Flush(); err != nil {
			s.deps.Logger.WithError(err).Warn("Failed to persist learned mappings")
		}
	}

	s.deps.Logger.Info("Import committed",
		logging.Field{Key: "session", Value: s.id},
		logging.Field{Key: "inserted", Value: len(rows)})
	return result, nil
}

func (s *Session) selectedInOrder() []int {
	ids := make([]int, 0, len(s.order))
	for _, id := range s.order {
		if s.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// toTransaction forces the non-recurring single-transaction shape: imports
// never infer installments or recurrence from the source document.
func toTransaction(c models.Candidate) models.Transaction {
	return models.Transaction{
		AccountID:         c.AccountID,
		CategoryID:        c.CategoryID,
		SubcategoryID:     c.SubcategoryID,
		Date:              c.Date,
		Description:       c.Description,
		Amount:            c.Amount,
		Type:              c.Type,
		Settled:           c.Settled,
		Notes:             c.Notes,
		Recurring:         false,
		Installment:       1,
		TotalInstallments: 1,
	}
}
