package categorizer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
	"rferreira/meubolso/internal/store"
)

var testCategories = []models.Category{
	{
		ID:     "cat-food",
		Name:   "Alimentação",
		Type:   models.TypeExpense,
		Active: true,
		Subcategories: []models.Subcategory{
			{ID: "sub-delivery", CategoryID: "cat-food", Name: "Delivery"},
		},
	},
	{ID: "cat-transport", Name: "Transporte", Type: models.TypeExpense, Active: true},
	{ID: "cat-salary", Name: "Salário", Type: models.TypeIncome, Active: true},
	{ID: "cat-old", Name: "Antiga", Type: models.TypeExpense, Active: false},
}

func expenseCandidate(description string) models.Candidate {
	return models.Candidate{
		Date:        "2024-03-01",
		Description: description,
		Amount:      decimal.NewFromFloat(42.90),
		Type:        models.TypeExpense,
	}
}

func TestSuggestDirectMappingWinsOverKeyword(t *testing.T) {
	ruleStore := &store.MockRuleStore{
		Mappings: map[string]string{"ifood delivery": "Transporte"},
		Rules: []models.CategoryRule{
			{Category: "Alimentação", Keywords: []string{"ifood"}},
		},
	}
	c := New(ruleStore, nil, &logging.MockLogger{})

	resolved, ok := c.Suggest(context.Background(), expenseCandidate("IFOOD Delivery"), testCategories)
	require.True(t, ok)
	assert.Equal(t, "cat-transport", resolved.CategoryID)
	assert.Equal(t, "DirectMapping", resolved.Source)
}

func TestSuggestKeywordWithSubcategory(t *testing.T) {
	ruleStore := &store.MockRuleStore{
		Rules: []models.CategoryRule{
			{Category: "Alimentação", Subcategory: "Delivery", Keywords: []string{"ifood"}},
		},
	}
	c := New(ruleStore, nil, &logging.MockLogger{})

	resolved, ok := c.Suggest(context.Background(), expenseCandidate("IFOOD *RESTAURANTE"), testCategories)
	require.True(t, ok)
	assert.Equal(t, "cat-food", resolved.CategoryID)
	assert.Equal(t, "sub-delivery", resolved.SubcategoryID)
	assert.Equal(t, "Keyword", resolved.Source)
}

func TestSuggestNeverCrossesTypePartition(t *testing.T) {
	// Mapping points at an income category, but the candidate is an expense.
	ruleStore := &store.MockRuleStore{
		Mappings: map[string]string{"pagamento recebido": "Salário"},
	}
	c := New(ruleStore, nil, &logging.MockLogger{})

	_, ok := c.Suggest(context.Background(), expenseCandidate("Pagamento Recebido"), testCategories)
	assert.False(t, ok)
}

func TestSuggestSkipsInactiveCategories(t *testing.T) {
	ruleStore := &store.MockRuleStore{
		Rules: []models.CategoryRule{
			{Category: "Antiga", Keywords: []string{"mensalidade"}},
		},
	}
	c := New(ruleStore, nil, &logging.MockLogger{})

	_, ok := c.Suggest(context.Background(), expenseCandidate("Mensalidade clube"), testCategories)
	assert.False(t, ok)
}

func TestSuggestAIFallbackLearnsMapping(t *testing.T) {
	ruleStore := &store.MockRuleStore{}
	ai := &MockAIClient{Result: "Transporte"}
	c := New(ruleStore, ai, &logging.MockLogger{})

	resolved, ok := c.Suggest(context.Background(), expenseCandidate("UBER *TRIP"), testCategories)
	require.True(t, ok)
	assert.Equal(t, "cat-transport", resolved.CategoryID)
	assert.Equal(t, "AI", resolved.Source)
	require.Len(t, ai.Requests, 1)

	// The AI answer is learned: the second lookup resolves directly.
	resolved, ok = c.Suggest(context.Background(), expenseCandidate("UBER *TRIP"), testCategories)
	require.True(t, ok)
	assert.Equal(t, "DirectMapping", resolved.Source)
	assert.Len(t, ai.Requests, 1)

	// Flush persists the learned mapping.
	require.NoError(t, c.Flush())
	assert.Equal(t, "Transporte", ruleStore.Mappings["uber *trip"])
}

func TestSuggestAIErrorIsSoft(t *testing.T) {
	ruleStore := &store.MockRuleStore{}
	ai := &MockAIClient{Err: assert.AnError}
	c := New(ruleStore, ai, &logging.MockLogger{})

	_, ok := c.Suggest(context.Background(), expenseCandidate("LOJA DESCONHECIDA"), testCategories)
	assert.False(t, ok)
}

func TestExtractCategoryFromResponse(t *testing.T) {
	categories := []string{"Alimentação", "Transporte"}

	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"structured", "Category: Transporte\nsomething else", "Transporte"},
		{"bracketed", "Category: [Alimentação]", "Alimentação"},
		{"free text fallback", "I believe this is Transporte related.", "Transporte"},
		{"no match", "cannot categorize", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCategoryFromResponse(tt.response, categories))
		})
	}
}
