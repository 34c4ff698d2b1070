package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/categorizer"
	"rferreira/meubolso/internal/factory"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/parsererror"
	"rferreira/meubolso/internal/store"
)

const statementCSV = `Data;Descricao;Valor
01/03/2024;Salario Empresa XYZ;1500,00
02/03/2024;Aluguel Apartamento;-800,00
`

func newTestBackend() *backend.Mock {
	mock := backend.NewMock()
	mock.Accounts = []models.Account{
		{ID: "acc-1", Name: "Conta Corrente", Type: "checking", Active: true},
	}
	mock.Categories = []models.Category{
		{ID: "cat-income", Name: "Salário", Type: models.TypeIncome, Active: true},
		{ID: "cat-housing", Name: "Moradia", Type: models.TypeExpense, Active: true},
	}
	return mock
}

func newTestSession(mock *backend.Mock) *Session {
	return NewSession(Deps{
		Backend: mock,
		Logger:  &logging.MockLogger{},
	})
}

func uploadStatement(t *testing.T, s *Session, csv string) {
	t.Helper()
	require.NoError(t, s.SetAccount("acc-1"))
	require.NoError(t, s.Upload(context.Background(), "extrato.csv", strings.NewReader(csv)))
}

func TestUploadRequiresAccount(t *testing.T) {
	s := newTestSession(newTestBackend())

	err := s.Upload(context.Background(), "extrato.csv", strings.NewReader(statementCSV))
	assert.ErrorIs(t, err, ErrNoAccountSelected)
	assert.Equal(t, StateUpload, s.State())
}

func TestUploadRequiresFile(t *testing.T) {
	s := newTestSession(newTestBackend())
	require.NoError(t, s.SetAccount("acc-1"))

	err := s.Upload(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoFileSelected)
}

func TestUploadTransitionsToAnalysis(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	assert.Equal(t, StateAnalysis, s.State())
	assert.Equal(t, models.DocStatement, s.DocumentType())

	candidates := s.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "2024-03-01", candidates[0].Date)
	assert.Equal(t, models.TypeIncome, candidates[0].Type)
	assert.Equal(t, "2024-03-02", candidates[1].Date)
	assert.Equal(t, models.TypeExpense, candidates[1].Type)
	// Every candidate carries the destination account and is pre-selected.
	for _, c := range candidates {
		assert.Equal(t, "acc-1", c.AccountID)
	}
	assert.Len(t, s.SelectedIDs(), 2)
}

func TestUploadSuggestsCategories(t *testing.T) {
	mock := newTestBackend()
	s := NewSession(Deps{
		Backend: mock,
		Suggester: categorizer.New(&store.MockRuleStore{
			Rules: []models.CategoryRule{
				{Category: "Moradia", Keywords: []string{"aluguel"}},
			},
		}, nil, &logging.MockLogger{}),
		Logger: &logging.MockLogger{},
	})
	uploadStatement(t, s, statementCSV)

	candidates := s.Candidates()
	require.Len(t, candidates, 2)
	assert.Empty(t, candidates[0].CategoryID)
	assert.Equal(t, "cat-housing", candidates[1].CategoryID)
}

func TestTypeChangeClearsCategory(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	id := s.Candidates()[1].ID
	category := "cat-housing"
	_, err := s.UpdateCandidate(id, CandidateEdit{CategoryID: &category})
	require.NoError(t, err)

	newType := models.TypeIncome
	updated, err := s.UpdateCandidate(id, CandidateEdit{Type: &newType})
	require.NoError(t, err)
	assert.Equal(t, models.TypeIncome, updated.Type)
	assert.Empty(t, updated.CategoryID)
	assert.Empty(t, updated.SubcategoryID)
}

func TestEditSanitizesText(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	id := s.Candidates()[0].ID
	desc := `<script>alert(1)</script>Mercado   Central`
	updated, err := s.UpdateCandidate(id, CandidateEdit{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Mercado Central", updated.Description)
}

func TestValidationAggregatesViolations(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	// No categories assigned yet: both candidates are invalid.
	report := s.Validate()
	require.Len(t, report.Items, 2)
	assert.Contains(t, report.Items[0].Violations, "category is required")

	// Fixing one candidate clears its violation without touching the other.
	id := report.Items[0].CandidateID
	category := "cat-income"
	_, err := s.UpdateCandidate(id, CandidateEdit{CategoryID: &category})
	require.NoError(t, err)

	report = s.Validate()
	require.Len(t, report.Items, 1)
	assert.NotEqual(t, id, report.Items[0].CandidateID)
}

func TestProceedBlockedByValidation(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	report, err := s.Proceed()
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.Equal(t, StateAnalysis, s.State())
}

func TestProceedRequiresSelection(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)
	require.NoError(t, s.SelectAll(false))

	_, err := s.Proceed()
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestValidationRunsOverSelectedSubsetOnly(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	candidates := s.Candidates()
	category := "cat-income"
	_, err := s.UpdateCandidate(candidates[0].ID, CandidateEdit{CategoryID: &category})
	require.NoError(t, err)

	// Deselect the still-invalid candidate: the subset is now clean.
	require.NoError(t, s.Select(candidates[1].ID, false))

	report, err := s.Proceed()
	require.NoError(t, err)
	assert.True(t, report.Valid())
	assert.Equal(t, StateConfirmation, s.State())
}

func TestBackNavigation(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	assignAllCategories(t, s)
	_, err := s.Proceed()
	require.NoError(t, err)
	require.Equal(t, StateConfirmation, s.State())

	// confirmation -> analysis keeps the candidates.
	require.NoError(t, s.Back())
	assert.Equal(t, StateAnalysis, s.State())
	assert.Len(t, s.Candidates(), 2)

	// analysis -> upload discards them.
	require.NoError(t, s.Back())
	assert.Equal(t, StateUpload, s.State())
	assert.Empty(t, s.Candidates())
}

func TestCommitInsertsSelectedOnly(t *testing.T) {
	mock := newTestBackend()
	s := newTestSession(mock)
	uploadStatement(t, s, statementCSV)
	assignAllCategories(t, s)

	// Keep only the expense.
	candidates := s.Candidates()
	require.NoError(t, s.Select(candidates[0].ID, false))

	_, err := s.Proceed()
	require.NoError(t, err)

	result, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, StateSuccess, s.State())

	require.Len(t, mock.Batches, 1)
	rows := mock.Batches[0]
	require.Len(t, rows, 1)
	assert.Equal(t, "Aluguel Apartamento", rows[0].Description)
	assert.False(t, rows[0].Recurring)
	assert.Equal(t, 1, rows[0].Installment)
	assert.Equal(t, 1, rows[0].TotalInstallments)
	// Accounts are refreshed from the remote store after commit.
	require.Len(t, result.Accounts, 1)
	assert.Equal(t, "acc-1", result.Accounts[0].ID)
}

func TestCommitFailureStaysInConfirmation(t *testing.T) {
	mock := newTestBackend()
	s := newTestSession(mock)
	uploadStatement(t, s, statementCSV)
	assignAllCategories(t, s)
	_, err := s.Proceed()
	require.NoError(t, err)

	mock.InsertTransactionsError = assert.AnError
	_, err = s.Commit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateConfirmation, s.State())

	// The same commit action retries cleanly once the store recovers.
	mock.InsertTransactionsError = nil
	result, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, StateSuccess, s.State())
}

func TestCancelResetsToUpload(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	s.Cancel()
	assert.Equal(t, StateUpload, s.State())
	assert.Empty(t, s.Candidates())
	assert.Zero(t, s.Committed())
}

func TestCardInvoiceForcesExpense(t *testing.T) {
	invoiceCSV := `Fatura do cartão de crédito;vencimento 10/04/2024;pagamento mínimo
01/03/2024;Restaurante Figueira;120,00
02/03/2024;Estorno Compra;-35,00
`
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, invoiceCSV)

	assert.Equal(t, models.DocCardInvoice, s.DocumentType())
	for _, c := range s.Candidates() {
		assert.Equal(t, models.TypeExpense, c.Type)
	}
}

// Five CSV lines, one with an unparseable amount. The malformed line falls to
// amount zero and is filtered, four candidates survive review and commit.
func TestEndToEndStatementImport(t *testing.T) {
	csv := `Data;Descricao;Valor
01/03/2024;Salario Empresa XYZ;5000,00
05/03/2024;Supermercado Zaffari;-350,50
10/03/2024;Conta de Luz CEEE;abc
15/03/2024;Farmacia Panvel;-89,90
20/03/2024;Transferencia Recebida;200,00
`
	mock := newTestBackend()
	s := newTestSession(mock)
	uploadStatement(t, s, csv)

	candidates := s.Candidates()
	require.Len(t, candidates, 4)

	// Review requires category assignment on all four.
	report, err := s.Proceed()
	require.NoError(t, err)
	require.False(t, report.Valid())
	assert.Len(t, report.Items, 4)

	assignAllCategories(t, s)

	report, err = s.Proceed()
	require.NoError(t, err)
	require.True(t, report.Valid())

	result, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Inserted)
	assert.Equal(t, StateSuccess, s.State())
	assert.Equal(t, 4, s.Committed())

	require.Len(t, mock.Batches, 1)
	assert.Len(t, mock.Batches[0], 4)
	for _, row := range mock.Batches[0] {
		assert.False(t, row.Recurring)
		assert.True(t, row.Amount.IsPositive())
	}
}

func TestSessionManager(t *testing.T) {
	m := NewManager(0)
	s := newTestSession(newTestBackend())

	m.Put(s)
	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Delete(s.ID())
	_, ok = m.Get(s.ID())
	assert.False(t, ok)
}

func assignAllCategories(t *testing.T, s *Session) {
	t.Helper()
	for _, c := range s.Candidates() {
		category := "cat-housing"
		if c.Type == models.TypeIncome {
			category = "cat-income"
		}
		_, err := s.UpdateCandidate(c.ID, CandidateEdit{CategoryID: &category})
		require.NoError(t, err)
	}
}

func TestAmountEditStoresMagnitude(t *testing.T) {
	s := newTestSession(newTestBackend())
	uploadStatement(t, s, statementCSV)

	id := s.Candidates()[0].ID
	amount := decimal.NewFromFloat(-99.90)
	updated, err := s.UpdateCandidate(id, CandidateEdit{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromFloat(99.90)))
}

func TestUploadUsesConfiguredExtraction(t *testing.T) {
	s := NewSession(Deps{
		Backend: newTestBackend(),
		Extract: factory.Config{
			CSVDelimiters: []string{"|"},
			DateFormats:   []string{"2006.01.02"},
		},
		Logger: &logging.MockLogger{},
	})
	require.NoError(t, s.SetAccount("acc-1"))

	csv := "2024.03.01|Mercado Central|-52,30\n2024.03.02|Restaurante|-31,00"
	require.NoError(t, s.Upload(context.Background(), "extrato.csv", strings.NewReader(csv)))

	candidates := s.Candidates()
	require.Len(t, candidates, 2)
	assert.Equal(t, "2024-03-01", candidates[0].Date)
	assert.Equal(t, "Mercado Central", candidates[0].Description)
}

func TestValidationProducesTypedViolations(t *testing.T) {
	c := models.Candidate{ID: 7, Date: "2024-03-01", Description: "Mercado", Amount: decimal.Zero}

	violations := validateCandidate(c)
	require.Len(t, violations, 3)

	var ve *parsererror.ValidationError
	require.ErrorAs(t, violations[0], &ve)
	assert.Equal(t, 7, ve.CandidateID)
	assert.Equal(t, "category", ve.Field)
	assert.Equal(t, "candidate 7: invalid category: category is required", ve.Error())
	assert.Equal(t, ve.Error(), parsererror.UserMessage(ve))

	assert.Equal(t, "account", violations[1].Field)
	assert.Equal(t, "amount", violations[2].Field)
}
