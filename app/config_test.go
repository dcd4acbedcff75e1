package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfigYAML = `telegram:
  token: "test-token"
  run_mode: longpoll

database:
  host: localhost
  port: "5432"
  user: bot
  name: bot
  sslmode: disable

ai:
  api_key: "test-key"
  model: gpt-4o

bot:
  page_size: 7
  chunk_limit: 2000
  history_ttl_minutes: 30
  notify_missing: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Core.Telegram.Token != "test-token" {
		t.Fatalf("token = %q", cfg.Core.Telegram.Token)
	}
	if cfg.AI.Model != "gpt-4o" {
		t.Fatalf("ai model = %q", cfg.AI.Model)
	}
	if cfg.Bot.PageSize != 7 {
		t.Fatalf("page size = %d", cfg.Bot.PageSize)
	}
	if cfg.Bot.ChunkLimit != 2000 {
		t.Fatalf("chunk limit = %d", cfg.Bot.ChunkLimit)
	}
	if !cfg.Bot.NotifyMissing {
		t.Fatal("notify_missing should be set")
	}
	if got := cfg.HistoryTTL(); got != 30*time.Minute {
		t.Fatalf("history ttl = %v", got)
	}
	if cfg.CoreConfig() != &cfg.Core {
		t.Fatal("CoreConfig must expose the embedded core section")
	}
}

func TestLoadConfigRequiresAIKey(t *testing.T) {
	content := `telegram:
  token: "test-token"
`
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Fatal("expected an error for the missing ai api key")
	}
}

func TestHistoryTTLDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.HistoryTTL(); got <= 0 {
		t.Fatalf("default history ttl = %v", got)
	}
}
