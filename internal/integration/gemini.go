package integration

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider generates code with Google's Gemini API. The client is
// created per call so a missing key surfaces as a generation failure
// rather than a startup error.
type GeminiProvider struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewGeminiProvider creates a GeminiProvider from configuration.
func NewGeminiProvider(cfg models.CloudAIConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultCloudTimeout
	}
	return &GeminiProvider{
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return models.CloudGemini }

// Generate sends the prompt as a single user turn and returns the response text.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: p.timeout},
	})
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}

	temperature := float32(p.temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if p.maxTokens > 0 {
		config.MaxOutputTokens = outputTokenLimit(p.maxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini response contained no text")
	}
	return text, nil
}

// outputTokenLimit narrows a configured token budget to the API's int32 field.
func outputTokenLimit(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}
