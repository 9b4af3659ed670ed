// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %s, want :8000", cfg.HTTPAddr)
	}
	if cfg.DefaultUserID != "default_user" {
		t.Errorf("DefaultUserID = %s, want default_user", cfg.DefaultUserID)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %s, want openai", cfg.Provider)
	}
	if cfg.ChatModel != "gpt-5-mini" {
		t.Errorf("ChatModel = %s, want gpt-5-mini", cfg.ChatModel)
	}
	if cfg.LightModel != "gpt-4o-mini" {
		t.Errorf("LightModel = %s, want gpt-4o-mini", cfg.LightModel)
	}
	if cfg.AdvancedModel != "gpt-4o" {
		t.Errorf("AdvancedModel = %s, want gpt-4o", cfg.AdvancedModel)
	}
	if cfg.TranscribeModel != "whisper-1" {
		t.Errorf("TranscribeModel = %s, want whisper-1", cfg.TranscribeModel)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.MaxContextTokens != 1500 {
		t.Errorf("MaxContextTokens = %d, want 1500", cfg.MaxContextTokens)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %s, want empty", cfg.DatabaseURL)
	}
	if cfg.HasLLM() {
		t.Error("HasLLM() = true without keys")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("DATABASE_URL", "postgres://localhost/journal")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("CONFIDANT_CHAT_MODEL", "claude-sonnet-4-5")
	t.Setenv("LLM_TIMEOUT", "90s")
	t.Setenv("LLM_MAX_RETRIES", "5")
	t.Setenv("LLM_RETRY_DELAY", "3s")
	t.Setenv("MAX_CONTEXT_TOKENS", "800")
	t.Setenv("PERSONAS_FILE", "/etc/confidant/personas.yaml")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost/journal" {
		t.Errorf("DatabaseURL = %s", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %s, want :9090", cfg.HTTPAddr)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("Provider = %s, want anthropic", cfg.Provider)
	}
	if !cfg.HasLLM() {
		t.Error("HasLLM() = false with anthropic key")
	}
	if cfg.ChatModel != "claude-sonnet-4-5" {
		t.Errorf("ChatModel = %s", cfg.ChatModel)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %v, want 3s", cfg.RetryDelay)
	}
	if cfg.MaxContextTokens != 800 {
		t.Errorf("MaxContextTokens = %d, want 800", cfg.MaxContextTokens)
	}
	if cfg.PersonasFile != "/etc/confidant/personas.yaml" {
		t.Errorf("PersonasFile = %s", cfg.PersonasFile)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Clearenv()
	t.Setenv("LLM_MAX_RETRIES", "lots")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxRetries != 3 || cfg.Timeout != 60*time.Second {
		t.Errorf("fallbacks = %d/%v, want 3/60s", cfg.MaxRetries, cfg.Timeout)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Provider: ProviderOpenAI, MaxRetries: 3, MaxContextTokens: 1500, Timeout: time.Second, LogFormat: "text"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }, true},
		{"too many retries", func(c *Config) { c.MaxRetries = 15 }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"tiny context", func(c *Config) { c.MaxContextTokens = 50 }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
