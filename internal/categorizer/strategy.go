// Package categorizer suggests categories for import candidates. Suggestions
// are advisory: the review screen shows them pre-filled and the user has the
// final word before commit.
package categorizer

import (
	"context"

	"rferreira/meubolso/internal/models"
)

// Suggestion is a proposed categorization for one candidate. Category and
// Subcategory carry names; resolution to remote-store IDs happens in the
// orchestrator against the live category list.
type Suggestion struct {
	Category    string
	Subcategory string
	// Source names the strategy that produced the suggestion.
	Source string
}

// SuggestionStrategy is one approach to categorizing a candidate (direct
// mapping, keywords, AI).
type SuggestionStrategy interface {
	// Suggest attempts to categorize the candidate. The bool reports whether
	// the strategy produced a suggestion; errors are soft and the chain moves
	// on to the next strategy.
	Suggest(ctx context.Context, candidate models.Candidate) (Suggestion, bool, error)

	// Name identifies the strategy in logs.
	Name() string
}

// RuleStoreInterface is the slice of the rule store the strategies need.
type RuleStoreInterface interface {
	LoadRules() ([]models.CategoryRule, error)
	LoadMappings() (map[string]string, error)
	SaveMappings(mappings map[string]string) error
}
