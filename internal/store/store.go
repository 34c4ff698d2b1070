// Package store loads and saves the local categorization databases: keyword
// rules and learned description-to-category mappings, both YAML files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// RuleStore manages loading and saving of categorization data.
type RuleStore struct {
	KeywordsFile string
	MappingsFile string
	logger       logging.Logger
}

// NewRuleStore creates a store over the given YAML files. Empty file names
// fall back to the conventional defaults.
func NewRuleStore(keywordsFile, mappingsFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RuleStore{
		KeywordsFile: keywordsFile,
		MappingsFile: mappingsFile,
		logger:       logger,
	}
}

// FindConfigFile looks for a configuration file in standard locations.
func (s *RuleStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".meubolso", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".meubolso", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadRules loads keyword rules from the YAML file. A missing file is not an
// error: categorization simply falls through to the next strategy.
func (s *RuleStore) LoadRules() ([]models.CategoryRule, error) {
	filename := s.KeywordsFile
	if filename == "" {
		filename = "categories.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Keyword rules file not found",
				logging.Field{Key: "file", Value: filename})
			return []models.CategoryRule{}, nil
		}
		return nil, fmt.Errorf("error resolving keyword rules file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading keyword rules file: %w", err)
	}

	// Preferred structure: "rules: [...]"
	var rulesFile models.CategoryRulesFile
	if err := yaml.Unmarshal(data, &rulesFile); err == nil && len(rulesFile.Rules) > 0 {
		s.logger.Debug("Loaded keyword rules",
			logging.Field{Key: "count", Value: len(rulesFile.Rules)},
			logging.Field{Key: "file", Value: filePath})
		return normalizeRules(rulesFile.Rules), nil
	}

	// Fallback: a bare list of rules without the top-level key.
	var rules []models.CategoryRule
	if err := yaml.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
		s.logger.Debug("Loaded keyword rules from bare list",
			logging.Field{Key: "count", Value: len(rules)},
			logging.Field{Key: "file", Value: filePath})
		return normalizeRules(rules), nil
	}

	// Fallback: "Category name: [keyword, ...]" map format.
	return s.parseRuleMap(data)
}

// parseRuleMap handles the compact map format where keys are category names
// and values are keyword lists.
func (s *RuleStore) parseRuleMap(data []byte) ([]models.CategoryRule, error) {
	var ruleMap map[string][]string
	if err := yaml.Unmarshal(data, &ruleMap); err != nil {
		return nil, fmt.Errorf("error parsing keyword rules file: %w", err)
	}

	var rules []models.CategoryRule
	for category, keywords := range ruleMap {
		rules = append(rules, models.CategoryRule{
			Category: category,
			Keywords: keywords,
		})
	}

	s.logger.Debug("Parsed keyword rules from map format",
		logging.Field{Key: "count", Value: len(rules)})
	return normalizeRules(rules), nil
}

func normalizeRules(rules []models.CategoryRule) []models.CategoryRule {
	for i := range rules {
		for j, keyword := range rules[i].Keywords {
			rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(keyword))
		}
	}
	return rules
}

// LoadMappings loads learned description-to-category mappings from YAML.
func (s *RuleStore) LoadMappings() (map[string]string, error) {
	filename := s.MappingsFile
	if filename == "" {
		filename = "mappings.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("Mappings file not found",
				logging.Field{Key: "file", Value: filename})
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error resolving mappings file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading mappings file: %w", err)
	}

	var mappings map[string]string
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("error parsing mappings file: %w", err)
	}
	if mappings == nil {
		mappings = map[string]string{}
	}

	s.logger.Debug("Loaded mappings",
		logging.Field{Key: "count", Value: len(mappings)},
		logging.Field{Key: "file", Value: filePath})
	return mappings, nil
}

// SaveMappings writes learned mappings back to YAML, creating the file (and
// its directory) when it does not exist yet.
func (s *RuleStore) SaveMappings(mappings map[string]string) error {
	filename := s.MappingsFile
	if filename == "" {
		filename = "mappings.yaml"
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil && err != os.ErrNotExist {
		return fmt.Errorf("error resolving mappings file: %w", err)
	}
	if err == os.ErrNotExist {
		if filepath.IsAbs(filename) {
			filePath = filename
		} else {
			filePath = filepath.Join(".meubolso", filename)
		}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("error marshaling mappings: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing mappings: %w", err)
	}

	s.logger.Debug("Saved mappings",
		logging.Field{Key: "count", Value: len(mappings)},
		logging.Field{Key: "file", Value: filePath})
	return nil
}
