package utils

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICopyClient serves paid tiers.
type OpenAICopyClient struct {
	client *openai.Client
	model  string
}

func NewOpenAICopyClient(apiKey, model string) CopyModelClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICopyClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAICopyClient) ModelName() string { return c.model }

func (c *OpenAICopyClient) GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrUnexpectedAIShape
	}
	return resp.Choices[0].Message.Content, nil
}
