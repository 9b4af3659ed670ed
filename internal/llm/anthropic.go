// ABOUTME: Anthropic provider on the Messages API
// ABOUTME: Text blocks of the reply are joined into one response
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/harper/confidant/internal/util"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicConfig holds configuration for the Anthropic provider
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// AnthropicProvider implements Provider for Claude models
type AnthropicProvider struct {
	client     *anthropic.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// NewAnthropic creates an Anthropic provider with a static API key
func NewAnthropic(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are paced by util.Retry
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client:     &client,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Name identifies the provider
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a Messages API request
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		return nil, &ProviderError{Message: "model is required", Provider: p.Name()}
	}

	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	var message *anthropic.Message
	err := util.Retry(ctx, p.maxRetries, p.retryDelay, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		var err error
		message, err = p.client.Messages.New(attemptCtx, params)
		if err != nil {
			slog.Warn("anthropic completion failed", "model", req.Model, "attempt", attempt+1, "error", err)
			return classifyAnthropic(err)
		}
		return nil
	})
	if err != nil {
		pe := &ProviderError{
			Message:  fmt.Sprintf("failed after %d attempts: %v", p.maxRetries+1, err),
			Provider: p.Name(),
			Err:      err,
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			pe.StatusCode = apiErr.StatusCode
		}
		return nil, pe
	}

	var content strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(text.Text)
		}
	}

	return &Response{
		Content:      strings.TrimSpace(content.String()),
		Model:        string(message.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
		StopReason:   string(message.StopReason),
	}, nil
}

func classifyAnthropic(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests && status != http.StatusRequestTimeout {
			return fmt.Errorf("%w: %w", util.ErrPermanent, err)
		}
	}
	return err
}
