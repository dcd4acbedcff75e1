// Package ai talks to the text generation service used for writing and
// reviewing essays.
package ai

import "context"

// Config holds generation service settings.
type Config struct {
	APIKey string `yaml:"api_key" envconfig:"AI_API_KEY"`
	// BaseURL allows pointing the client at any OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url" envconfig:"AI_BASE_URL"`
	Model   string `yaml:"model" envconfig:"AI_MODEL"`
	// MaxTokens caps the answer length; 0 -> default ceiling.
	MaxTokens      int `yaml:"max_tokens" envconfig:"AI_MAX_TOKENS"`
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"AI_TIMEOUT_SECONDS"`
}

// Generator produces essay text and essay reviews from the generation service.
type Generator interface {
	// WriteEssay generates an essay on the topic following the given outline.
	WriteEssay(ctx context.Context, topic, outline string) (string, error)
	// CheckEssay reviews the submitted text for spelling, punctuation, style
	// and logic problems and returns structured recommendations.
	CheckEssay(ctx context.Context, text string) (string, error)
}
