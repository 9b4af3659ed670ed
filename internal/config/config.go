// ABOUTME: Centralized configuration for the confidant service and CLI
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported LLM providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for confidant
type Config struct {
	// Storage
	DatabaseURL string

	// HTTP
	HTTPAddr      string
	DefaultUserID string

	// LLM settings
	Provider        string
	OpenAIKey       string
	AnthropicKey    string
	ChatModel       string
	LightModel      string
	AdvancedModel   string
	TranscribeModel string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration

	// Context assembly
	MaxContextTokens int
	PersonasFile     string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		DefaultUserID:    getEnv("DEFAULT_USER_ID", "default_user"),
		Provider:         strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		ChatModel:        getEnv("CONFIDANT_CHAT_MODEL", "gpt-5-mini"),
		LightModel:       getEnv("CONFIDANT_LIGHT_MODEL", "gpt-4o-mini"),
		AdvancedModel:    getEnv("CONFIDANT_ADVANCED_MODEL", "gpt-4o"),
		TranscribeModel:  getEnv("CONFIDANT_TRANSCRIBE_MODEL", "whisper-1"),
		Timeout:          getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		MaxRetries:       getEnvInt("LLM_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("LLM_RETRY_DELAY", 2*time.Second),
		MaxContextTokens: getEnvInt("MAX_CONTEXT_TOKENS", 1500),
		PersonasFile:     os.Getenv("PERSONAS_FILE"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderAnthropic {
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.Provider)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LLM_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxContextTokens < 100 {
		return fmt.Errorf("MAX_CONTEXT_TOKENS must be at least 100, got %d", c.MaxContextTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// HasLLM reports whether the selected provider has credentials
func (c *Config) HasLLM() bool {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicKey != ""
	}
	return c.OpenAIKey != ""
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
