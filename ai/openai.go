package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/AlexBit99/MyMISiSAdventures/core/logger"
	"log/slog"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 800
	defaultTimeout   = 60 * time.Second
)

// OpenAIClient calls any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIClient builds the generation client from config.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// WriteEssay generates an essay on the topic following the given outline.
func (c *OpenAIClient) WriteEssay(ctx context.Context, topic, outline string) (string, error) {
	return c.generate(ctx, "write", writeEssayPrompt(topic, outline))
}

// CheckEssay reviews the submitted text and returns structured findings.
func (c *OpenAIClient) CheckEssay(ctx context.Context, text string) (string, error) {
	return c.generate(ctx, "check", checkEssayPrompt(text))
}

func (c *OpenAIClient) generate(ctx context.Context, op, prompt string) (string, error) {
	requestID := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		logger.AI.Error("generation failed",
			slog.String("event", "generate"),
			slog.String("op", op),
			slog.String("model", c.model),
			slog.String("request_id", requestID),
			slog.Int("prompt_len", len(prompt)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("ai %s: %w", op, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai %s: empty response", op)
	}
	answer := resp.Choices[0].Message.Content

	logger.AI.Info("generation done",
		slog.String("event", "generate"),
		slog.String("op", op),
		slog.String("model", c.model),
		slog.String("request_id", requestID),
		slog.Int("prompt_len", len(prompt)),
		slog.Int("answer_len", len(answer)),
		slog.Duration("duration", logger.Took(start)),
	)
	return answer, nil
}
