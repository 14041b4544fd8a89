package advisor

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

const defaultDeepSeekURL = "https://api.deepseek.com/v1"

// deepseekClient is the concrete Advisor backed by DeepSeek. DeepSeek exposes
// an OpenAI-compatible chat completions endpoint, so the go-openai client is
// used with DeepSeek's base URL.
type deepseekClient struct {
	client *openai.Client
	model  string
}

// NewDeepSeekClient returns an Advisor that calls the DeepSeek API.
//   - apiKey: your DEEPSEEK_API_KEY
//   - model:  e.g. "deepseek-chat"
func NewDeepSeekClient(apiKey, model string, opts ...Option) Advisor {
	o := applyOptions(defaultDeepSeekURL, opts)

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = o.baseURL
	cfg.HTTPClient = &http.Client{Timeout: o.timeout}

	return &deepseekClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Advise calls the chat completions endpoint in JSON mode and returns its
// advice for a.
func (c *deepseekClient) Advise(ctx context.Context, a analysis.Analysis) (Advice, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 1024,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(a)},
		},
	})
	if err != nil {
		return Advice{}, fmt.Errorf("deepseek: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Advice{}, fmt.Errorf("deepseek: no choices in response")
	}

	adv, err := parseAdvice(resp.Choices[0].Message.Content)
	if err != nil {
		return Advice{}, fmt.Errorf("deepseek: %w", err)
	}
	return adv, nil
}
