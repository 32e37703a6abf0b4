package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"

	groqTemperature = 0.1
	groqMaxTokens   = 500

	systemMessage = "You are a precise document classifier for university documents. Always follow the mandatory classification rules."
)

// GroqClient asks a Groq-hosted chat model for the verdict. Groq exposes
// an OpenAI-compatible API, so the stock client works against a custom
// base URL.
type GroqClient struct {
	client *openai.Client
	model  string
	stats  *LatencyStats
	logger *slog.Logger
}

func NewGroqClient(apiKey, model, baseURL string, stats *LatencyStats, logger *slog.Logger) *GroqClient {
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		stats:  stats,
		logger: logger,
	}
}

func (c *GroqClient) Name() string { return "groq:" + c.model }

// Decide sends the rendered prompt and parses the model's line-oriented
// answer. Rate limits and server errors surface as RetryableError so the
// caller can retry once.
func (c *GroqClient) Decide(ctx context.Context, p Payload) (Verdict, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: groqTemperature,
		MaxTokens:   groqMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: p.Prompt},
		},
	})
	elapsed := time.Since(start)
	if c.stats != nil {
		c.stats.Record(elapsed.Milliseconds())
	}

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
				return Verdict{}, &RetryableError{
					StatusCode: apiErr.HTTPStatusCode,
					Message:    apiErr.Message,
				}
			}
		}
		return Verdict{}, fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("empty response from groq")
	}

	text := resp.Choices[0].Message.Content
	c.logger.Debug("groq verdict received",
		"model", c.model,
		"duration_ms", elapsed.Milliseconds(),
		"response_len", len(text))

	return ParseVerdict(text), nil
}
