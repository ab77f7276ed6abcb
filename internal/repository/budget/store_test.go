package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/garden/internal/db"
)

type mockStore struct {
	values  map[string][]byte
	incrs   map[string]int64
	ttls    map[string]time.Duration
	nx      bool
	getErr  error
	incrErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		values: map[string][]byte{},
		incrs:  map[string]int64{},
		ttls:   map[string]time.Duration{},
	}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.ttls[key] = ttl
	m.nx = nx
	return nil
}

func TestStore_IncrBySetsTTLByPeriod(t *testing.T) {
	ms := newMockStore()
	s := New(ms, time.Hour, 2*time.Hour)

	if err := s.IncrBy(context.Background(), "garden:budget:primary:daily:2025-01-01", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(context.Background(), "garden:budget:primary:monthly:2025-01", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.ttls["garden:budget:primary:daily:2025-01-01"] != time.Hour {
		t.Errorf("unexpected daily ttl: %v", ms.ttls)
	}
	if ms.ttls["garden:budget:primary:monthly:2025-01"] != 2*time.Hour {
		t.Errorf("unexpected monthly ttl: %v", ms.ttls)
	}
	if !ms.nx {
		t.Error("expected EXPIRE NX")
	}
}

func TestStore_Get(t *testing.T) {
	ms := newMockStore()
	ms.values["k"] = []byte("1234")
	s := New(ms, 0, 0)

	v, err := s.Get(context.Background(), "k")
	if err != nil || v != 1234 {
		t.Fatalf("expected 1234, got %d (%v)", v, err)
	}

	v, err = s.Get(context.Background(), "missing")
	if err != nil || v != 0 {
		t.Fatalf("expected 0 for missing key, got %d (%v)", v, err)
	}

	ms.values["bad"] = []byte("abc")
	if _, err := s.Get(context.Background(), "bad"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestStore_Errors(t *testing.T) {
	ms := newMockStore()
	ms.getErr = errors.New("down")
	ms.incrErr = errors.New("down")
	s := New(ms, 0, 0)

	if _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("expected get error")
	}
	if err := s.IncrBy(context.Background(), "k", 1); err == nil {
		t.Error("expected incr error")
	}
	if s.dailyTTL != DefaultDailyTTL || s.monthlyTTL != DefaultMonthlyTTL {
		t.Errorf("expected default ttls, got %v / %v", s.dailyTTL, s.monthlyTTL)
	}
}
