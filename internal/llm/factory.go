// ABOUTME: Builds the tier router and transcriber from configuration
// ABOUTME: OpenAI also serves transcription whenever its key is present
package llm

import (
	"fmt"
	"strings"

	"github.com/harper/confidant/internal/config"
)

// Claude models used when the configured names are the OpenAI defaults
const (
	defaultAnthropicChatModel  = "claude-sonnet-4-5"
	defaultAnthropicLightModel = "claude-haiku-4-5"
)

// NewFromConfig builds the router for cfg.Provider and, when an OpenAI key
// is set, a Whisper transcriber. The transcriber is nil otherwise.
func NewFromConfig(cfg *config.Config) (*Router, Transcriber, error) {
	var openaiProvider *OpenAIProvider
	if cfg.OpenAIKey != "" {
		p, err := NewOpenAI(OpenAIConfig{
			APIKey:          cfg.OpenAIKey,
			TranscribeModel: cfg.TranscribeModel,
			Timeout:         cfg.Timeout,
			MaxRetries:      cfg.MaxRetries,
			RetryDelay:      cfg.RetryDelay,
		})
		if err != nil {
			return nil, nil, err
		}
		openaiProvider = p
	}

	var transcriber Transcriber
	if openaiProvider != nil {
		transcriber = openaiProvider
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		p, err := NewAnthropic(AnthropicConfig{
			APIKey:     cfg.AnthropicKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			return nil, nil, err
		}
		return NewRouter(map[Tier]Route{
			TierChat:     {Provider: p, Model: anthropicModel(cfg.ChatModel, defaultAnthropicChatModel)},
			TierLight:    {Provider: p, Model: anthropicModel(cfg.LightModel, defaultAnthropicLightModel)},
			TierAdvanced: {Provider: p, Model: anthropicModel(cfg.AdvancedModel, defaultAnthropicChatModel)},
		}), transcriber, nil

	case config.ProviderOpenAI:
		if openaiProvider == nil {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewRouter(map[Tier]Route{
			TierChat:     {Provider: openaiProvider, Model: cfg.ChatModel},
			TierLight:    {Provider: openaiProvider, Model: cfg.LightModel},
			TierAdvanced: {Provider: openaiProvider, Model: cfg.AdvancedModel},
		}), transcriber, nil
	}

	return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

func anthropicModel(configured, fallback string) string {
	if configured == "" || strings.HasPrefix(configured, "gpt-") {
		return fallback
	}
	return configured
}
