package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/metrics"
	"github.com/kailas-cloud/garden/internal/usecase/completion"
)

// Provider names used in logs, metrics and budget keys.
const (
	ProviderPrimary  = "primary"
	ProviderFallback = "fallback"
)

// ChatProvider is a completion provider over the OpenAI-compatible chat API.
type ChatProvider struct {
	client *openai.Client
	model  string
	name   string
	logger *zap.Logger
}

// Config holds the chat provider settings. APIKey may be empty for keyless endpoints.
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewChatProvider creates an OpenAI-compatible chat provider.
func NewChatProvider(cfg *Config) *ChatProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChatProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		name:   cfg.Name,
		logger: logger,
	}
}

// NewProviders builds the keyed and keyless providers from cfg. A primary without
// an API key and a fallback without a base URL come back as nil interfaces.
func NewProviders(cfg completion.Config, logger *zap.Logger) (primary, fallback completion.Provider) {
	if cfg.HasPrimary() {
		primary = NewChatProvider(&Config{
			Name:    ProviderPrimary,
			APIKey:  cfg.PrimaryAPIKey,
			BaseURL: cfg.PrimaryBaseURL,
			Model:   cfg.PrimaryModel,
			Logger:  logger,
		})
	}
	if cfg.HasFallback() {
		fallback = NewChatProvider(&Config{
			Name:    ProviderFallback,
			BaseURL: cfg.FallbackBaseURL,
			Model:   cfg.FallbackModel,
			Logger:  logger,
		})
	}
	return primary, fallback
}

// Name implements completion.Provider.
func (p *ChatProvider) Name() string { return p.name }

// Model returns the configured model id.
func (p *ChatProvider) Model() string { return p.model }

// Complete implements completion.Provider with transport-level metrics.
func (p *ChatProvider) Complete(ctx context.Context, messages []completion.Message) (completion.Result, error) {
	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		p.fail("api_error")
		return completion.Result{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		p.fail("empty_response")
		return completion.Result{}, fmt.Errorf("empty completion response: %w", domain.ErrCompletionProvider)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(p.name, p.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(p.name, p.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		tokens := metrics.CompletionTokensTotal
		tokens.WithLabelValues(p.name, p.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		tokens.WithLabelValues(p.name, p.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		tokens.WithLabelValues(p.name, p.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return completion.Result{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

func (p *ChatProvider) fail(errorType string) {
	metrics.CompletionRequestsTotal.WithLabelValues(p.name, p.model, "error").Inc()
	metrics.CompletionErrorsTotal.WithLabelValues(p.name, p.model, errorType).Inc()
}

// HealthCheck verifies API availability via ListModels.
func (p *ChatProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a readable message and wraps domain.ErrCompletionProvider.
func parseAPIError(err error) error {
	wrap := domain.ErrCompletionProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("completion request aborted: %w: %w", err, wrap)
	}
	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible gateways return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
