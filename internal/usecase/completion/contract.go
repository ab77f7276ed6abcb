package completion

import (
	"context"
	"time"
)

// Role is the author of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one chat-style prompt entry.
type Message struct {
	Role    Role
	Content string
}

// Result is a single text completion with its token usage.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider produces a chat completion. Implementations speak the OpenAI-compatible shape.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (Result, error)
}

// HealthChecker is optionally implemented by providers that can probe availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config enumerates the two providers. It is built by the composition root;
// nothing in this package reads the environment.
type Config struct {
	PrimaryAPIKey   string
	PrimaryBaseURL  string
	PrimaryModel    string
	FallbackBaseURL string
	FallbackModel   string
	Timeout         time.Duration
}

// HasPrimary reports whether a keyed provider is configured.
func (c Config) HasPrimary() bool { return c.PrimaryAPIKey != "" }

// HasFallback reports whether a keyless provider is configured.
func (c Config) HasFallback() bool { return c.FallbackBaseURL != "" }
