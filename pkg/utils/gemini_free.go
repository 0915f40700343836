package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiCopyClient serves the free tier on a free-tier Gemini model.
type GeminiCopyClient struct {
	client *genai.Client
	model  string
}

func NewGeminiCopyClient(apiKey, model string) (CopyModelClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCopyClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiCopyClient) ModelName() string { return c.model }

func (c *GeminiCopyClient) GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	// Force JSON-only output so we rarely need brace matching downstream.
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.7)
	m.SetTopP(0.5)
	m.SetTopK(20)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	if sb.Len() == 0 {
		return "", ErrUnexpectedAIShape
	}
	return sb.String(), nil
}
