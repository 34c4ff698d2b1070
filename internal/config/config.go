// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr              string   `mapstructure:"addr" yaml:"addr"`
		MaxUploadBytes    int64    `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
		AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		RateLimitPerSec   float64  `mapstructure:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
		RateLimitBurst    int      `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
		CacheTTLMinutes   int      `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
		SessionTTLMinutes int      `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	} `mapstructure:"server" yaml:"server"`

	Backend struct {
		BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize the key
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"backend" yaml:"backend"`

	Importer struct {
		// Invoice classification is a locale-specific heuristic, so both the
		// vocabulary and the match threshold are configuration.
		InvoiceTerms     []string `mapstructure:"invoice_terms" yaml:"invoice_terms"`
		InvoiceThreshold int      `mapstructure:"invoice_threshold" yaml:"invoice_threshold"`

		CSVDelimiters  string   `mapstructure:"csv_delimiters" yaml:"csv_delimiters"`
		DateFormats    []string `mapstructure:"date_formats" yaml:"date_formats"`
		MinDescription int      `mapstructure:"min_description" yaml:"min_description"`
	} `mapstructure:"importer" yaml:"importer"`

	AI struct {
		Enabled          bool   `mapstructure:"enabled" yaml:"enabled"`
		Model            string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds   int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		FallbackCategory string `mapstructure:"fallback_category" yaml:"fallback_category"`
		APIKey           string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		KeywordsFile string `mapstructure:"keywords_file" yaml:"keywords_file"`
		MappingsFile string `mapstructure:"mappings_file" yaml:"mappings_file"`
	} `mapstructure:"categories" yaml:"categories"`
}

// DefaultInvoiceTerms is the built-in indicator vocabulary for credit-card
// invoices. Brazilian banking terms plus the English equivalents seen in
// exported documents.
var DefaultInvoiceTerms = []string{
	"fatura",
	"cartao de credito",
	"cartão de crédito",
	"limite de credito",
	"limite de crédito",
	"credit limit",
	"vencimento",
	"due date",
	"pagamento minimo",
	"pagamento mínimo",
	"minimum payment",
	"invoice",
	"visa",
	"mastercard",
	"elo",
	"amex",
	"anuidade",
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then MEUBOLSO_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.meubolso")
	v.AddConfigPath(".meubolso")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MEUBOLSO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
		// Missing config file is fine, defaults and env vars apply.
	}

	// Secrets are always taken from unprefixed environment variables.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}
	if err := v.BindEnv("backend.api_key", "BACKEND_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind BACKEND_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", int64(10*1024*1024))
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_per_sec", 10.0)
	v.SetDefault("server.rate_limit_burst", 30)
	v.SetDefault("server.cache_ttl_minutes", 15)
	v.SetDefault("server.session_ttl_minutes", 60)

	v.SetDefault("backend.base_url", "http://localhost:9000")
	v.SetDefault("backend.timeout_seconds", 30)

	v.SetDefault("importer.invoice_terms", DefaultInvoiceTerms)
	v.SetDefault("importer.invoice_threshold", 3)
	v.SetDefault("importer.csv_delimiters", ";,\t")
	v.SetDefault("importer.date_formats", []string{"02/01/2006", "2006-01-02", "02-01-2006"})
	v.SetDefault("importer.min_description", 3)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.fallback_category", "")

	v.SetDefault("categories.keywords_file", "categories.yaml")
	v.SetDefault("categories.mappings_file", "mappings.yaml")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Importer.InvoiceThreshold < 1 {
		return fmt.Errorf("importer.invoice_threshold must be at least 1, got: %d", config.Importer.InvoiceThreshold)
	}

	if len(config.Importer.CSVDelimiters) == 0 {
		return fmt.Errorf("importer.csv_delimiters must not be empty")
	}

	if config.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got: %d", config.Server.MaxUploadBytes)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// ConfigureLoggingFromConfig builds the logrus logger described by the Log
// section of the configuration.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
