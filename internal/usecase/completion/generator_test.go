package completion

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterCompletionMetrics()
	os.Exit(m.Run())
}

type mockProvider struct {
	name   string
	result Result
	err    error
	calls  int
	wait   bool
	got    []Message
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, messages []Message) (Result, error) {
	m.calls++
	m.got = messages
	if m.wait {
		<-ctx.Done()
		return Result{}, ctx.Err()
	}
	return m.result, m.err
}

func TestGenerator_PrimarySucceeds(t *testing.T) {
	primary := &mockProvider{name: "keyed", result: Result{Text: "hello", TotalTokens: 12}}
	fallback := &mockProvider{name: "free", result: Result{Text: "other"}}
	g := NewGenerator(primary, fallback, time.Second, zap.NewNop())

	text, ok := g.Generate(context.Background(), "sys", "user")
	if !ok || text != "hello" {
		t.Fatalf("expected primary text, got %q ok=%v", text, ok)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback must not be called, got %d calls", fallback.calls)
	}
	if len(primary.got) != 2 || primary.got[0].Role != RoleSystem || primary.got[1].Content != "user" {
		t.Errorf("unexpected messages: %+v", primary.got)
	}
}

func TestGenerator_PrimaryErrorFallsThrough(t *testing.T) {
	primary := &mockProvider{name: "keyed", err: errors.New("boom")}
	fallback := &mockProvider{name: "free", result: Result{Text: "from fallback"}}
	g := NewGenerator(primary, fallback, time.Second, zap.NewNop())

	text, ok := g.Generate(context.Background(), "sys", "user")
	if !ok || text != "from fallback" {
		t.Fatalf("expected fallback text, got %q ok=%v", text, ok)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("expected one attempt each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestGenerator_EmptyContentFallsThrough(t *testing.T) {
	primary := &mockProvider{name: "keyed", result: Result{Text: "   "}}
	fallback := &mockProvider{name: "free", result: Result{Text: "ok"}}
	g := NewGenerator(primary, fallback, time.Second, zap.NewNop())

	text, ok := g.Generate(context.Background(), "sys", "user")
	if !ok || text != "ok" {
		t.Fatalf("expected fallback text, got %q ok=%v", text, ok)
	}
}

func TestGenerator_AllFail(t *testing.T) {
	primary := &mockProvider{name: "keyed", err: errors.New("401")}
	fallback := &mockProvider{name: "free", err: errors.New("503")}
	g := NewGenerator(primary, fallback, time.Second, zap.NewNop())

	text, ok := g.Generate(context.Background(), "sys", "user")
	if ok || text != "" {
		t.Fatalf("expected no response, got %q ok=%v", text, ok)
	}
}

func TestGenerator_NilPrimarySkipped(t *testing.T) {
	fallback := &mockProvider{name: "free", result: Result{Text: "ok"}}
	g := NewGenerator(nil, fallback, time.Second, nil)

	if _, ok := g.Generate(context.Background(), "sys", "user"); !ok {
		t.Fatal("expected fallback to answer")
	}
	if g.Primary() != nil {
		t.Error("expected nil primary")
	}
}

func TestGenerator_NoProviders(t *testing.T) {
	g := NewGenerator(nil, nil, 0, nil)
	if _, ok := g.Generate(context.Background(), "sys", "user"); ok {
		t.Fatal("expected no response without providers")
	}
}

func TestGenerator_TimeoutPerAttempt(t *testing.T) {
	primary := &mockProvider{name: "keyed", wait: true}
	fallback := &mockProvider{name: "free", result: Result{Text: "late but fine"}}
	g := NewGenerator(primary, fallback, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	text, ok := g.Generate(context.Background(), "sys", "user")
	if !ok || text != "late but fine" {
		t.Fatalf("expected fallback after timeout, got %q ok=%v", text, ok)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not honored, took %v", elapsed)
	}
}

func TestGenerator_RecordsUsage(t *testing.T) {
	primary := &mockProvider{name: "keyed", err: errors.New("down")}
	fallback := &mockProvider{name: "free", result: Result{Text: "ok", TotalTokens: 42}}
	g := NewGenerator(primary, fallback, time.Second, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, ok := g.Generate(ctx, "sys", "user"); !ok {
		t.Fatal("expected a response")
	}
	if usage.TotalTokens != 42 {
		t.Errorf("expected 42 tokens recorded, got %d", usage.TotalTokens)
	}
	if usage.Provider != "free" {
		t.Errorf("expected provider free, got %q", usage.Provider)
	}
}
