package categorizer

import (
	"context"
	"strings"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// KeywordStrategy categorizes by substring matching against the keyword rules
// loaded from the rules file. Rules are checked in file order, so more
// specific rules should come first.
type KeywordStrategy struct {
	rules  []models.CategoryRule
	store  RuleStoreInterface
	logger logging.Logger
}

// NewKeywordStrategy creates the strategy and loads the rules.
func NewKeywordStrategy(store RuleStoreInterface, logger logging.Logger) *KeywordStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &KeywordStrategy{
		store:  store,
		logger: logger,
	}
	s.loadRules()
	return s
}

// Name returns the name of this strategy for logging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Suggest scans the candidate description for rule keywords.
func (s *KeywordStrategy) Suggest(_ context.Context, candidate models.Candidate) (Suggestion, bool, error) {
	description := strings.ToLower(candidate.Description)
	if strings.TrimSpace(description) == "" {
		return Suggestion{}, false, nil
	}

	for _, rule := range s.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(description, keyword) {
				s.logger.Debug("Candidate categorized by keyword",
					logging.Field{Key: "strategy", Value: s.Name()},
					logging.Field{Key: "keyword", Value: keyword},
					logging.Field{Key: "category", Value: rule.Category})

				return Suggestion{
					Category:    rule.Category,
					Subcategory: rule.Subcategory,
					Source:      s.Name(),
				}, true, nil
			}
		}
	}

	return Suggestion{}, false, nil
}

func (s *KeywordStrategy) loadRules() {
	rules, err := s.store.LoadRules()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load keyword rules")
		return
	}
	s.rules = rules
}
