package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rferreira/meubolso/internal/config"
)

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Backend.BaseURL = "http://localhost:9000"
	cfg.Backend.TimeoutSeconds = 30
	cfg.Server.SessionTTLMinutes = 60
	cfg.Importer.InvoiceThreshold = 3
	cfg.Importer.MinDescription = 3
	cfg.Categories.KeywordsFile = "categories.yaml"
	cfg.Categories.MappingsFile = "mappings.yaml"
	return cfg
}

func TestNewContainerNilConfig(t *testing.T) {
	c, err := NewContainer(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
	assert.Nil(t, c)
}

func TestNewContainerWithoutAI(t *testing.T) {
	c, err := NewContainer(baseConfig())
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetConfig())
	assert.NotNil(t, c.GetBackend())
	assert.NotNil(t, c.GetStore())
	assert.NotNil(t, c.GetCategorizer())
	assert.NotNil(t, c.GetClassifier())
	assert.NotNil(t, c.GetSessions())
	assert.NotNil(t, c.GetDiagnosis())
	assert.NotNil(t, c.GetPlanning())
	assert.NotNil(t, c.GetServer())

	assert.Nil(t, c.aiClient)
}

func TestNewContainerExtractorConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Importer.CSVDelimiters = ";|"
	cfg.Importer.DateFormats = []string{"2006.01.02", "02/01/2006"}

	c, err := NewContainer(cfg)
	require.NoError(t, err)

	extractCfg := c.GetExtractorConfig()
	assert.Equal(t, []string{";", "|"}, extractCfg.CSVDelimiters)
	assert.Equal(t, []string{"2006.01.02", "02/01/2006"}, extractCfg.DateFormats)
}

func TestNewContainerWithAI(t *testing.T) {
	cfg := baseConfig()
	cfg.AI.Enabled = true
	cfg.AI.APIKey = "test-api-key"
	cfg.AI.Model = "gemini-1.5-flash"

	c, err := NewContainer(cfg)
	require.NoError(t, err)
	assert.NotNil(t, c.aiClient)
}

func TestContainerClose(t *testing.T) {
	c, err := NewContainer(baseConfig())
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
