package categorizer

import (
	"context"
	"strings"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// Resolved is a suggestion resolved against the remote category list: names
// replaced by the IDs the review screen and the commit actually use.
type Resolved struct {
	CategoryID    string
	SubcategoryID string
	Source        string
}

// Categorizer chains strategies from cheapest to most expensive: learned
// direct mappings, then keyword rules, then (when configured) the AI client.
type Categorizer struct {
	direct   *DirectMappingStrategy
	keyword  *KeywordStrategy
	aiClient AIClient
	logger   logging.Logger
}

// New creates a Categorizer. aiClient may be nil, which disables the AI step.
func New(store RuleStoreInterface, aiClient AIClient, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Categorizer{
		direct:   NewDirectMappingStrategy(store, logger),
		keyword:  NewKeywordStrategy(store, logger),
		aiClient: aiClient,
		logger:   logger,
	}
}

// Suggest proposes a category for the candidate, resolved against the given
// remote categories. Only categories matching the candidate's type are
// considered: an income category is never suggested for an expense. Returns
// false when no strategy produced a usable suggestion.
func (c *Categorizer) Suggest(ctx context.Context, candidate models.Candidate, available []models.Category) (Resolved, bool) {
	eligible := filterByType(available, candidate.Type)
	if len(eligible) == 0 {
		return Resolved{}, false
	}

	strategies := []SuggestionStrategy{c.direct, c.keyword}
	for _, strategy := range strategies {
		suggestion, found, err := strategy.Suggest(ctx, candidate)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.Field{Key: "strategy", Value: strategy.Name()})
			continue
		}
		if !found {
			continue
		}
		if resolved, ok := resolve(suggestion, eligible); ok {
			return resolved, true
		}
		// Name did not match any eligible category (wrong type or stale
		// rule); fall through to the next strategy.
	}

	return c.suggestWithAI(ctx, candidate, eligible)
}

func (c *Categorizer) suggestWithAI(ctx context.Context, candidate models.Candidate, eligible []models.Category) (Resolved, bool) {
	if c.aiClient == nil {
		return Resolved{}, false
	}

	names := make([]string, 0, len(eligible))
	for _, category := range eligible {
		names = append(names, category.Name)
	}

	name, err := c.aiClient.SuggestCategory(ctx, candidate, names)
	if err != nil {
		c.logger.WithError(err).Warn("AI categorization failed",
			logging.Field{Key: "description", Value: candidate.Description})
		return Resolved{}, false
	}
	if strings.TrimSpace(name) == "" {
		return Resolved{}, false
	}

	resolved, ok := resolve(Suggestion{Category: name, Source: "AI"}, eligible)
	if !ok {
		return Resolved{}, false
	}

	// Remember the AI's answer so the next import of this merchant resolves
	// from the mapping database instead.
	c.direct.Learn(candidate.Description, name)

	return resolved, true
}

// Flush persists any mappings learned during this run.
func (c *Categorizer) Flush() error {
	return c.direct.Flush()
}

func filterByType(categories []models.Category, txType models.TransactionType) []models.Category {
	var out []models.Category
	for _, category := range categories {
		if category.Type == txType && category.Active {
			out = append(out, category)
		}
	}
	return out
}

// resolve maps a by-name suggestion onto the remote category list, matching
// names case-insensitively. Subcategory resolution is best-effort.
func resolve(suggestion Suggestion, eligible []models.Category) (Resolved, bool) {
	for _, category := range eligible {
		if !strings.EqualFold(category.Name, suggestion.Category) {
			continue
		}
		resolved := Resolved{CategoryID: category.ID, Source: suggestion.Source}
		if suggestion.Subcategory != "" {
			for _, sub := range category.Subcategories {
				if strings.EqualFold(sub.Name, suggestion.Subcategory) {
					resolved.SubcategoryID = sub.ID
					break
				}
			}
		}
		return resolved, true
	}
	return Resolved{}, false
}
