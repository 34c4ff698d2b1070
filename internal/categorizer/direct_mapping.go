package categorizer

import (
	"context"
	"strings"
	"sync"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// DirectMappingStrategy categorizes by exact (normalized) description match
// against the learned mappings database. It also accumulates new mappings
// learned from downstream strategies and flushes them back to the store.
type DirectMappingStrategy struct {
	mappings map[string]string
	store    RuleStoreInterface
	logger   logging.Logger
	dirty    bool
	mu       sync.RWMutex
}

// NewDirectMappingStrategy creates the strategy and loads the mappings.
func NewDirectMappingStrategy(store RuleStoreInterface, logger logging.Logger) *DirectMappingStrategy {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &DirectMappingStrategy{
		mappings: make(map[string]string),
		store:    store,
		logger:   logger,
	}
	s.loadMappings()
	return s
}

// Name returns the name of this strategy for logging.
func (s *DirectMappingStrategy) Name() string {
	return "DirectMapping"
}

func normalizeDescription(description string) string {
	return strings.ToLower(strings.TrimSpace(description))
}

// Suggest looks the candidate description up in the learned mappings.
func (s *DirectMappingStrategy) Suggest(_ context.Context, candidate models.Candidate) (Suggestion, bool, error) {
	key := normalizeDescription(candidate.Description)
	if key == "" {
		return Suggestion{}, false, nil
	}

	s.mu.RLock()
	category, found := s.mappings[key]
	s.mu.RUnlock()

	if !found {
		return Suggestion{}, false, nil
	}

	s.logger.Debug("Candidate categorized by direct mapping",
		logging.Field{Key: "strategy", Value: s.Name()},
		logging.Field{Key: "description", Value: candidate.Description},
		logging.Field{Key: "category", Value: category})

	return Suggestion{Category: category, Source: s.Name()}, true, nil
}

// Learn records a new description-to-category mapping so the next import of
// the same merchant resolves without touching slower strategies.
func (s *DirectMappingStrategy) Learn(description, category string) {
	key := normalizeDescription(description)
	if key == "" || category == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mappings[key] == category {
		return
	}
	s.mappings[key] = category
	s.dirty = true
}

// Flush persists learned mappings when anything changed since the last save.
func (s *DirectMappingStrategy) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	snapshot := make(map[string]string, len(s.mappings))
	for k, v := range s.mappings {
		snapshot[k] = v
	}
	if err := s.store.SaveMappings(snapshot); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

func (s *DirectMappingStrategy) loadMappings() {
	mappings, err := s.store.LoadMappings()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load mappings for direct mapping strategy")
		return
	}

	normalized := make(map[string]string, len(mappings))
	for k, v := range mappings {
		normalized[normalizeDescription(k)] = v
	}

	s.mu.Lock()
	s.mappings = normalized
	s.mu.Unlock()
}
