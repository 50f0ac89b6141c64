package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kairomed/medicine-info-api/interfaces"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-1.5-flash"

// Compile-time check to ensure GeminiGenerator implements TextGenerator
var _ interfaces.TextGenerator = (*GeminiGenerator)(nil)

// GeminiGenerator calls the Gemini API through the official SDK
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a client for the Gemini developer API
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends prompt as a single user turn and returns the text parts
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}

// Model returns the configured model name
func (g *GeminiGenerator) Model() string {
	return g.model
}
