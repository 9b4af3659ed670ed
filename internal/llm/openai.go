// ABOUTME: OpenAI provider for chat completions and Whisper transcription
// ABOUTME: Retries transient failures with exponential backoff and a per-attempt timeout
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/harper/confidant/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultTranscribeModel is the speech-to-text model
const DefaultTranscribeModel = openai.Whisper1

// OpenAIConfig holds configuration for the OpenAI provider
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	TranscribeModel string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultOpenAIConfig returns the default provider configuration
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:          apiKey,
		TranscribeModel: DefaultTranscribeModel,
		Timeout:         60 * time.Second,
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
	}
}

// OpenAIProvider wraps the OpenAI API client with retry logic
type OpenAIProvider struct {
	client          *openai.Client
	transcribeModel string
	timeout         time.Duration
	maxRetries      int
	retryDelay      time.Duration
}

// NewOpenAI creates an OpenAI provider
func NewOpenAI(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = DefaultTranscribeModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &OpenAIProvider{
		client:          openai.NewClientWithConfig(clientCfg),
		transcribeModel: cfg.TranscribeModel,
		timeout:         cfg.Timeout,
		maxRetries:      cfg.MaxRetries,
		retryDelay:      cfg.RetryDelay,
	}, nil
}

// Name identifies the provider
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete runs a chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		return nil, &ProviderError{Message: "model is required", Provider: p.Name()}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toOpenAIMessages(req),
	}
	if usesReasoningParams(req.Model) {
		// Reasoning models reject max_tokens and non-default temperatures
		chatReq.MaxCompletionTokens = req.MaxTokens
	} else {
		chatReq.MaxTokens = req.MaxTokens
		chatReq.Temperature = float32(req.Temperature)
	}

	var resp openai.ChatCompletionResponse
	err := util.Retry(ctx, p.maxRetries, p.retryDelay, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		var err error
		resp, err = p.client.CreateChatCompletion(attemptCtx, chatReq)
		if err != nil {
			slog.Warn("openai completion failed", "model", req.Model, "attempt", attempt+1, "error", err)
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		return nil
	})
	if err != nil {
		return nil, p.wrap(err, p.maxRetries+1)
	}

	return &Response{
		Content:      strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   string(resp.Choices[0].FinishReason),
	}, nil
}

// Transcribe converts audio to text using Whisper
func (p *OpenAIProvider) Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error) {
	// The reader can only be consumed once, so transcription is not retried
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateTranscription(attemptCtx, openai.AudioRequest{
		Model:    p.transcribeModel,
		FilePath: filename,
		Reader:   audio,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, p.wrap(classify(err), 1)
	}

	return &Transcription{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
	}, nil
}

func (p *OpenAIProvider) wrap(err error, attempts int) error {
	pe := &ProviderError{
		Message:  fmt.Sprintf("failed after %d attempts: %v", attempts, err),
		Provider: p.Name(),
		Err:      err,
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.HTTPStatusCode
	}
	return pe
}

func toOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return messages
}

func usesReasoningParams(model string) bool {
	return strings.HasPrefix(model, "gpt-5") || strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4")
}

// classify marks client errors other than rate limits as permanent
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if status >= 400 && status < 500 && status != http.StatusTooManyRequests && status != http.StatusRequestTimeout {
		return fmt.Errorf("%w: %w", util.ErrPermanent, err)
	}
	return err
}
