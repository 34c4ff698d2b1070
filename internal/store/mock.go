package store

import (
	"rferreira/meubolso/internal/models"
)

// MockRuleStore is an in-memory RuleStore replacement for tests.
type MockRuleStore struct {
	Rules    []models.CategoryRule
	Mappings map[string]string

	LoadRulesError    error
	LoadMappingsError error
	SaveMappingsError error
}

// LoadRules returns the mock rules.
func (m *MockRuleStore) LoadRules() ([]models.CategoryRule, error) {
	if m.LoadRulesError != nil {
		return nil, m.LoadRulesError
	}
	return m.Rules, nil
}

// LoadMappings returns a copy of the mock mappings.
func (m *MockRuleStore) LoadMappings() (map[string]string, error) {
	if m.LoadMappingsError != nil {
		return nil, m.LoadMappingsError
	}
	result := make(map[string]string, len(m.Mappings))
	for k, v := range m.Mappings {
		result[k] = v
	}
	return result, nil
}

// SaveMappings merges the given mappings into the mock state.
func (m *MockRuleStore) SaveMappings(mappings map[string]string) error {
	if m.SaveMappingsError != nil {
		return m.SaveMappingsError
	}
	if m.Mappings == nil {
		m.Mappings = make(map[string]string)
	}
	for k, v := range mappings {
		m.Mappings[k] = v
	}
	return nil
}
