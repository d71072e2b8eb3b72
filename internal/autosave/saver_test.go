package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/TableUI/internal/feedback"
)

// countingStore wraps MemoryStore and signals every Save.
type countingStore struct {
	*MemoryStore
	mu    sync.Mutex
	saves int
	fail  error
	saved chan Draft
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore(), saved: make(chan Draft, 16)}
}

func (c *countingStore) Save(ctx context.Context, d Draft) error {
	c.mu.Lock()
	c.saves++
	fail := c.fail
	c.mu.Unlock()

	if fail != nil {
		return fail
	}
	if err := c.MemoryStore.Save(ctx, d); err != nil {
		return err
	}
	c.saved <- d
	return nil
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func TestSaver_DebounceCoalescesBurst(t *testing.T) {
	store := newCountingStore()
	s := NewSaver(store, Config{Delay: 30 * time.Millisecond}, feedback.Nop{})

	for _, v := range []string{"M", "Ma", "Mar", "Mari", "Maria"} {
		if err := s.Touch("cliente", map[string]string{"nome": v}); err != nil {
			t.Fatalf("Touch error = %v", err)
		}
	}

	select {
	case d := <-store.saved:
		if d.Fields["nome"] != "Maria" {
			t.Errorf("saved nome = %q, want %q", d.Fields["nome"], "Maria")
		}
	case <-time.After(time.Second):
		t.Fatal("draft was never saved")
	}

	time.Sleep(100 * time.Millisecond)
	if got := store.count(); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSaver_LoadPrefersPending(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.Save(ctx, Draft{FormID: "f", Fields: map[string]string{"a": "old"}})

	s := NewSaver(store, Config{Delay: time.Hour}, feedback.Nop{})
	s.Touch("f", map[string]string{"a": "new"})

	d, err := s.Load(ctx, "f")
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if d.Fields["a"] != "new" {
		t.Errorf("Load = %q, want pending value", d.Fields["a"])
	}
}

func TestSaver_Flush(t *testing.T) {
	store := newCountingStore()
	s := NewSaver(store, Config{Delay: time.Hour}, feedback.Nop{})
	ctx := context.Background()

	s.Touch("a", map[string]string{"x": "1"})
	s.Touch("b", map[string]string{"y": "2"})

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush error = %v", err)
	}
	if got := store.count(); got != 2 {
		t.Errorf("saves = %d, want 2", got)
	}
	if _, err := store.Load(ctx, "b"); err != nil {
		t.Errorf("draft b not stored: %v", err)
	}
	if s.deb.Pending() != 0 {
		t.Errorf("timers still pending after Flush")
	}
}

func TestSaver_FailedSaveStaysPending(t *testing.T) {
	store := newCountingStore()
	store.fail = errors.New("connection refused")
	s := NewSaver(store, Config{Delay: time.Hour}, feedback.Nop{})

	s.Touch("f", map[string]string{"a": "1"})
	if err := s.Flush(context.Background()); err == nil {
		t.Fatal("Flush expected error")
	}
	if s.Pending() != 1 {
		t.Errorf("Pending = %d after failed save, want 1", s.Pending())
	}
}

func TestSaver_Discard(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := NewSaver(store, Config{Delay: time.Hour}, feedback.Nop{})

	s.Touch("f", map[string]string{"a": "1"})
	s.Flush(ctx)
	s.Touch("f", map[string]string{"a": "2"})

	if err := s.Discard(ctx, "f"); err != nil {
		t.Fatalf("Discard error = %v", err)
	}
	if _, err := s.Load(ctx, "f"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Load after Discard error = %v, want ErrDraftNotFound", err)
	}
}

func TestSaver_InvalidFormID(t *testing.T) {
	s := NewSaver(NewMemoryStore(), Config{}, feedback.Nop{})
	if err := s.Touch("  ", nil); !errors.Is(err, ErrInvalidFormID) {
		t.Errorf("Touch error = %v, want ErrInvalidFormID", err)
	}
}

func TestSaver_Purge(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	store.Save(ctx, Draft{FormID: "old", SavedAt: now.Add(-48 * time.Hour)})
	store.Save(ctx, Draft{FormID: "new", SavedAt: now.Add(-time.Hour)})

	s := NewSaver(store, Config{}, feedback.Nop{})
	s.now = func() time.Time { return now }

	n, err := s.Purge(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Purge error = %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, err := store.Load(ctx, "new"); err != nil {
		t.Errorf("recent draft purged: %v", err)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	fired := make(chan struct{}, 1)

	d.Trigger("k", func() { fired <- struct{}{} })
	if !d.Cancel("k") {
		t.Fatal("Cancel returned false for pending key")
	}
	if d.Cancel("k") {
		t.Error("second Cancel returned true")
	}

	select {
	case <-fired:
		t.Error("cancelled callback fired")
	case <-time.After(80 * time.Millisecond):
	}
}

// slowStore delays the first Save until release is closed.
type slowStore struct {
	*MemoryStore
	mu       sync.Mutex
	calls    int
	started  chan struct{}
	release  chan struct{}
	finished chan struct{}
}

func newSlowStore() *slowStore {
	return &slowStore{
		MemoryStore: NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
		finished:    make(chan struct{}, 16),
	}
}

func (s *slowStore) Save(ctx context.Context, d Draft) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()

	if first {
		close(s.started)
		<-s.release
	}
	err := s.MemoryStore.Save(ctx, d)
	s.finished <- struct{}{}
	return err
}

func TestSaver_SlowSaveDoesNotOverwriteNewerDraft(t *testing.T) {
	store := newSlowStore()
	ctx := context.Background()
	s := NewSaver(store, Config{Delay: 10 * time.Millisecond}, feedback.Nop{})

	s.Touch("f", map[string]string{"v": "old"})
	<-store.started

	s.Touch("f", map[string]string{"v": "new"})
	time.Sleep(50 * time.Millisecond)
	close(store.release)

	for i := 0; i < 2; i++ {
		select {
		case <-store.finished:
		case <-time.After(time.Second):
			t.Fatalf("only %d of 2 saves finished", i)
		}
	}

	d, err := store.Load(ctx, "f")
	if err != nil {
		t.Fatalf("store Load error = %v", err)
	}
	if d.Fields["v"] != "new" {
		t.Errorf("stored %q, want %q", d.Fields["v"], "new")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestSaver_DiscardWaitsForInFlightSave(t *testing.T) {
	store := newSlowStore()
	ctx := context.Background()
	s := NewSaver(store, Config{Delay: 10 * time.Millisecond}, feedback.Nop{})

	s.Touch("f", map[string]string{"v": "draft"})
	<-store.started

	discarded := make(chan error, 1)
	go func() { discarded <- s.Discard(ctx, "f") }()

	time.Sleep(20 * time.Millisecond)
	close(store.release)

	select {
	case err := <-discarded:
		if err != nil {
			t.Fatalf("Discard error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Discard never returned")
	}

	if d, err := s.Load(ctx, "f"); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Load after Discard = %v, %v; want ErrDraftNotFound", d.Fields, err)
	}
}

func TestSaver_EditDuringSaveStaysPending(t *testing.T) {
	store := newSlowStore()
	s := NewSaver(store, Config{Delay: time.Hour}, feedback.Nop{})

	s.Touch("f", map[string]string{"v": "1"})
	flushed := make(chan error, 1)
	go func() { flushed <- s.Flush(context.Background()) }()
	<-store.started

	s.Touch("f", map[string]string{"v": "2"})
	close(store.release)
	if err := <-flushed; err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	if s.Pending() != 1 {
		t.Errorf("Pending = %d, want the newer edit to stay pending", s.Pending())
	}
	d, _ := s.Load(context.Background(), "f")
	if d.Fields["v"] != "2" {
		t.Errorf("Load = %q, want %q", d.Fields["v"], "2")
	}
}
