package health

import "context"

// DBPinger checks content storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CompletionChecker checks a completion provider.
type CompletionChecker interface {
	HealthCheck(ctx context.Context) error
}
