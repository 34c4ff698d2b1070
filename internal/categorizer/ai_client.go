package categorizer

import (
	"context"

	"rferreira/meubolso/internal/models"
)

// AIClient abstracts the external AI service used as the last categorization
// resort. Implementations pick one category name from the offered list, or
// return empty when the model cannot decide.
type AIClient interface {
	SuggestCategory(ctx context.Context, candidate models.Candidate, categories []string) (string, error)
}

// MockAIClient is an AIClient for tests.
type MockAIClient struct {
	Result string
	Err    error

	// Requests records the candidates sent to the client.
	Requests []models.Candidate
}

func (m *MockAIClient) SuggestCategory(_ context.Context, candidate models.Candidate, _ []string) (string, error) {
	m.Requests = append(m.Requests, candidate)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Result, nil
}
