package garden

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain/search/relevance"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	primaryAPIKey   string
	primaryBaseURL  string
	primaryModel    string
	fallbackBaseURL string
	fallbackModel   string
	timeout         time.Duration

	weights relevance.Weights
	logger  *zap.Logger
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPrimaryCompletion enables the keyed OpenAI-compatible provider.
// An empty baseURL means api.openai.com.
func WithPrimaryCompletion(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.primaryAPIKey = apiKey
		c.primaryBaseURL = baseURL
		c.primaryModel = model
	})
}

// WithFallbackCompletion enables a keyless OpenAI-compatible provider, such as
// a local Ollama, tried when the primary fails.
func WithFallbackCompletion(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fallbackBaseURL = baseURL
		c.fallbackModel = model
	})
}

// WithTimeout bounds each completion attempt. Defaults to 15s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithWeights overrides the relevance heuristic weights.
func WithWeights(titlePhrase, bodyPhrase, titleWord, bodyWord float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = relevance.Weights{
			TitlePhrase:   titlePhrase,
			BodyPhrase:    bodyPhrase,
			TitleWord:     titleWord,
			BodyWord:      bodyWord,
			MinWordLength: relevance.DefaultWeights().MinWordLength,
		}
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
