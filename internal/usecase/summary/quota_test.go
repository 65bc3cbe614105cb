package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
)

type mockCounterStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	incErr error
}

func newMockCounterStore() *mockCounterStore {
	return &mockCounterStore{data: make(map[string]int64)}
}

func (m *mockCounterStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return 0, m.incErr
	}
	m.data[key] += val
	return m.data[key], nil
}

func (m *mockCounterStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestDailyTokenQuota_DeniesAtLimit(t *testing.T) {
	q := NewDailyTokenQuota("test", 100, zap.NewNop())
	q.Spend(100)

	if err := q.Allow(context.Background()); !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestDailyTokenQuota_AllowsBelowLimit(t *testing.T) {
	q := NewDailyTokenQuota("test", 1000, zap.NewNop())
	q.Spend(500)

	if err := q.Allow(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Left(); got != 500 {
		t.Errorf("Left() = %d, want 500", got)
	}
}

func TestDailyTokenQuota_Unlimited(t *testing.T) {
	q := NewDailyTokenQuota("test", 0, zap.NewNop())
	q.Spend(999999999)

	if err := q.Allow(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := q.Left(); got != -1 {
		t.Errorf("Left() = %d, want -1", got)
	}
}

func TestDailyTokenQuota_LeftNeverNegative(t *testing.T) {
	q := NewDailyTokenQuota("test", 10, zap.NewNop())
	q.Spend(50)
	if got := q.Left(); got != 0 {
		t.Errorf("Left() = %d, want 0", got)
	}
}

func TestDailyTokenQuota_NewDayResets(t *testing.T) {
	q := NewDailyTokenQuota("test", 100, zap.NewNop())
	q.now = fixedClock(time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC))
	q.Spend(100)
	if err := q.Allow(context.Background()); err == nil {
		t.Fatal("expected quota exhausted before midnight")
	}

	q.now = fixedClock(time.Date(2024, 3, 5, 0, 1, 0, 0, time.UTC))
	if err := q.Allow(context.Background()); err != nil {
		t.Fatalf("expected fresh quota after midnight, got %v", err)
	}
	if got := q.Spent(); got != 0 {
		t.Errorf("Spent() = %d, want 0", got)
	}
}

func TestDailyTokenQuota_PersistRestoresAndMirrors(t *testing.T) {
	ms := newMockCounterStore()
	ms.data["veritas:summarizer_tokens:openai:2024-03-04"] = 400

	q := NewDailyTokenQuota("openai", 1000, zap.NewNop())
	q.now = fixedClock(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	q.Persist(context.Background(), ms)
	if got := q.Spent(); got != 400 {
		t.Fatalf("Spent() = %d, want 400 restored from store", got)
	}

	q.Spend(50)
	if got := ms.data["veritas:summarizer_tokens:openai:2024-03-04"]; got != 450 {
		t.Errorf("store counter = %d, want 450", got)
	}
	if len(ms.data) != 1 {
		t.Errorf("unexpected keys: %v", ms.data)
	}
}

func TestDailyTokenQuota_StoreErrorsTolerated(t *testing.T) {
	ms := newMockCounterStore()
	ms.getErr = errors.New("down")
	ms.incErr = errors.New("down")

	q := NewDailyTokenQuota("openai", 1000, zap.NewNop()).Persist(context.Background(), ms)
	q.Spend(10)
	if got := q.Spent(); got != 10 {
		t.Errorf("in-memory count must still advance, got %d", got)
	}
}

func TestDailyTokenQuota_ConcurrentSpend(t *testing.T) {
	q := NewDailyTokenQuota("test", 0, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Spend(2)
		}()
	}
	wg.Wait()
	if got := q.Spent(); got != 100 {
		t.Errorf("Spent() = %d, want 100", got)
	}
}
