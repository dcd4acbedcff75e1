package ai

import (
	"testing"
	"time"
)

func TestNewOpenAIClientDefaults(t *testing.T) {
	c, err := NewOpenAIClient(Config{APIKey: "key"})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if c.model != "gpt-4o-mini" {
		t.Fatalf("default model = %q, want gpt-4o-mini", c.model)
	}
	if c.maxTokens != defaultMaxTokens {
		t.Fatalf("default max tokens = %d, want %d", c.maxTokens, defaultMaxTokens)
	}
	if c.timeout != defaultTimeout {
		t.Fatalf("default timeout = %v, want %v", c.timeout, defaultTimeout)
	}
}

func TestNewOpenAIClientOverrides(t *testing.T) {
	c, err := NewOpenAIClient(Config{
		APIKey:         "key",
		Model:          "gpt-4o",
		MaxTokens:      1200,
		TimeoutSeconds: 15,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	if c.model != "gpt-4o" {
		t.Fatalf("model = %q", c.model)
	}
	if c.maxTokens != 1200 {
		t.Fatalf("max tokens = %d", c.maxTokens)
	}
	if c.timeout != 15*time.Second {
		t.Fatalf("timeout = %v", c.timeout)
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(Config{}); err == nil {
		t.Fatal("expected an error for the missing api key")
	}
}
