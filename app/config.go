package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/AlexBit99/MyMISiSAdventures/ai"
	"github.com/AlexBit99/MyMISiSAdventures/bot/conversation"
	coreconfig "github.com/AlexBit99/MyMISiSAdventures/core/config"
	coredatabase "github.com/AlexBit99/MyMISiSAdventures/core/database"
)

// BotConfig tunes the essay bot behaviour on top of the shared core settings.
type BotConfig struct {
	// PageSize is the number of essays per history page; 0 -> 5.
	PageSize int `yaml:"page_size" envconfig:"BOT_PAGE_SIZE"`
	// ChunkLimit caps outbound message length; 0 -> the transport default.
	ChunkLimit int `yaml:"chunk_limit" envconfig:"BOT_CHUNK_LIMIT"`
	// HistoryTTLMinutes bounds how long an open history view stays cached;
	// 0 -> default.
	HistoryTTLMinutes int `yaml:"history_ttl_minutes" envconfig:"BOT_HISTORY_TTL_MINUTES"`
	// NotifyMissing makes the bot tell the user when a selected template or
	// essay no longer exists instead of silently returning to the menu.
	NotifyMissing bool `yaml:"notify_missing" envconfig:"BOT_NOTIFY_MISSING"`
}

// Config aggregates everything the essay bot needs to run.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	AI       ai.Config           `yaml:"ai"`
	Bot      BotConfig           `yaml:"bot"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// HistoryTTL converts the configured minutes into a duration; non-positive
// values select the conversation default.
func (c *Config) HistoryTTL() time.Duration {
	if c.Bot.HistoryTTLMinutes <= 0 {
		return conversation.DefaultHistoryTTL
	}
	return time.Duration(c.Bot.HistoryTTLMinutes) * time.Minute
}

// Load reads configuration from the YAML file, then lets the environment
// (including a local .env, if present) override individual values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required")
	}
	return &cfg, nil
}
