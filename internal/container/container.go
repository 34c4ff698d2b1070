// Package container provides dependency injection for the meubolso
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"rferreira/meubolso/internal/backend"
	"rferreira/meubolso/internal/categorizer"
	"rferreira/meubolso/internal/classifier"
	"rferreira/meubolso/internal/config"
	"rferreira/meubolso/internal/diagnosis"
	"rferreira/meubolso/internal/factory"
	"rferreira/meubolso/internal/importer"
	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/normalizer"
	"rferreira/meubolso/internal/planning"
	"rferreira/meubolso/internal/server"
	"rferreira/meubolso/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation; dependencies are only
// reachable through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	backend     backend.Client
	store       *store.RuleStore
	aiClient    categorizer.AIClient
	categorizer *categorizer.Categorizer
	classifier  *classifier.Classifier
	extractCfg  factory.Config
	sessions    *importer.Manager
	diagnosis   *diagnosis.Service
	planning    *planning.Service
	server      *server.Server
}

// splitDelimiters turns the configured delimiter character string into the
// per-delimiter slice the CSV extractor tries.
func splitDelimiters(chars string) []string {
	var delims []string
	for _, r := range chars {
		delims = append(delims, string(r))
	}
	return delims
}

// NewContainer creates and wires all application dependencies from the
// given configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Logger first, everything else logs through it.
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	remote := backend.NewHTTPClient(
		cfg.Backend.BaseURL,
		cfg.Backend.APIKey,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		logger,
	)

	ruleStore := store.NewRuleStore(cfg.Categories.KeywordsFile, cfg.Categories.MappingsFile, logger)

	var aiClient categorizer.AIClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient = categorizer.NewGeminiClient(cfg.AI.APIKey, cfg.AI.Model, logger)
		logger.Info("AI categorization enabled",
			logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Info("AI categorization disabled")
	}

	cat := categorizer.New(ruleStore, aiClient, logger)

	docClassifier := classifier.New(cfg.Importer.InvoiceTerms, cfg.Importer.InvoiceThreshold, logger)

	sessionTTL := time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute
	sessions := importer.NewManager(sessionTTL)

	extractCfg := factory.Config{
		CSVDelimiters: splitDelimiters(cfg.Importer.CSVDelimiters),
		DateFormats:   cfg.Importer.DateFormats,
	}
	normalizeOpts := normalizer.Options{MinDescription: cfg.Importer.MinDescription}

	newSession := func() *importer.Session {
		return importer.NewSession(importer.Deps{
			Backend:    remote,
			Classifier: docClassifier,
			Suggester:  cat,
			Extract:    extractCfg,
			Normalize:  normalizeOpts,
			Logger:     logger,
		})
	}

	diagnosisService := diagnosis.NewService(remote, logger)
	planningService := planning.NewService(remote, logger)

	srv := server.New(server.Deps{
		Config:     cfg,
		Backend:    remote,
		Sessions:   sessions,
		NewSession: newSession,
		Diagnosis:  diagnosisService,
		Planning:   planningService,
		Logger:     logger,
	})

	logger.Info("Container initialized successfully",
		logging.Field{Key: "backend_url", Value: cfg.Backend.BaseURL},
		logging.Field{Key: "ai_enabled", Value: cfg.AI.Enabled})

	return &Container{
		logger:      logger,
		config:      cfg,
		backend:     remote,
		store:       ruleStore,
		aiClient:    aiClient,
		categorizer: cat,
		classifier:  docClassifier,
		extractCfg:  extractCfg,
		sessions:    sessions,
		diagnosis:   diagnosisService,
		planning:    planningService,
		server:      srv,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetBackend returns the remote store client.
func (c *Container) GetBackend() backend.Client {
	return c.backend
}

// GetStore returns the category rule store.
func (c *Container) GetStore() *store.RuleStore {
	return c.store
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetClassifier returns the document classifier.
func (c *Container) GetClassifier() *classifier.Classifier {
	return c.classifier
}

// GetExtractorConfig returns the configured extractor knobs.
func (c *Container) GetExtractorConfig() factory.Config {
	return c.extractCfg
}

// GetSessions returns the import session registry.
func (c *Container) GetSessions() *importer.Manager {
	return c.sessions
}

// GetDiagnosis returns the diagnosis service.
func (c *Container) GetDiagnosis() *diagnosis.Service {
	return c.diagnosis
}

// GetPlanning returns the planning service.
func (c *Container) GetPlanning() *planning.Service {
	return c.planning
}

// GetServer returns the fully wired HTTP server.
func (c *Container) GetServer() *server.Server {
	return c.server
}

// Close flushes learned category mappings and releases the AI client.
func (c *Container) Close() error {
	var firstErr error
	if err := c.categorizer.Flush(); err != nil {
		c.logger.Warn("Failed to flush category mappings",
			logging.Field{Key: "error", Value: err.Error()})
		firstErr = err
	}
	if closer, ok := c.aiClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.logger.Info("Container closed")
	return firstErr
}
