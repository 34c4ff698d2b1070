package categorizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rferreira/meubolso/internal/logging"
	"rferreira/meubolso/internal/models"
)

// GeminiClient implements AIClient over the Google Gemini API. The client is
// created lazily on first use so an unset API key only fails when AI
// categorization is actually attempted.
type GeminiClient struct {
	apiKey    string
	modelName string
	logger    logging.Logger

	mu     sync.Mutex
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini-backed AIClient.
func NewGeminiClient(apiKey, modelName string, logger logging.Logger) *GeminiClient {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logger,
	}
}

func (c *GeminiClient) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	c.model = client.GenerativeModel(c.modelName)
	return nil
}

// SuggestCategory asks Gemini to pick one category name for the candidate.
func (c *GeminiClient) SuggestCategory(ctx context.Context, candidate models.Candidate, categories []string) (string, error) {
	if err := c.ensureClient(ctx); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Categorize the following financial transaction:
Description: %s
Amount: %s
Date: %s
Direction: %s

Please assign this transaction to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]`,
		candidate.Description,
		candidate.Amount.StringFixed(2),
		candidate.Date,
		candidate.Type,
		strings.Join(categories, ", "))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	category := extractCategoryFromResponse(responseText, categories)

	c.logger.Debug("Gemini categorization result",
		logging.Field{Key: "description", Value: candidate.Description},
		logging.Field{Key: "category", Value: category})

	return category, nil
}

// extractCategoryFromResponse parses the model response, preferring the
// structured "Category:" line and falling back to scanning for any offered
// category name.
func extractCategoryFromResponse(response string, categories []string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Category:") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
			name = strings.Trim(name, "[]")
			if name != "" {
				return name
			}
		}
	}

	lower := strings.ToLower(response)
	for _, category := range categories {
		if strings.Contains(lower, strings.ToLower(category)) {
			return category
		}
	}

	return ""
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	c.model = nil
	return err
}
