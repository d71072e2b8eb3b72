package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/TableUI/internal/feedback"
)

// DefaultDelay is the debounce quiet period used when none is configured.
const DefaultDelay = time.Second

// DefaultSaveTimeout bounds a single write-through.
const DefaultSaveTimeout = 5 * time.Second

// Config holds Saver settings. Zero values fall back to defaults.
type Config struct {
	Delay       time.Duration
	SaveTimeout time.Duration
}

// Saver debounces form drafts and writes them through to a Store.
type Saver struct {
	store   Store
	deb     *Debouncer
	timeout time.Duration
	fb      feedback.Notifier
	now     func() time.Time

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingDraft
	writing map[string]*sync.Mutex
}

// pendingDraft is the latest unsaved edit of a form. seq orders edits so a
// finished write only clears the entry it actually stored.
type pendingDraft struct {
	fields map[string]string
	seq    uint64
}

// NewSaver returns a Saver writing to store. Save failures are reported to
// fb (a slog-backed Notifier if nil).
func NewSaver(store Store, cfg Config, fb feedback.Notifier) *Saver {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	if fb == nil {
		fb = feedback.NewLogger(nil)
	}

	return &Saver{
		store:   store,
		deb:     NewDebouncer(cfg.Delay),
		timeout: cfg.SaveTimeout,
		fb:      fb,
		now:     time.Now,
		pending: make(map[string]pendingDraft),
		writing: make(map[string]*sync.Mutex),
	}
}

// Touch records the latest field values of formID and restarts its debounce
// window. Nothing is written until the window expires.
func (s *Saver) Touch(formID string, fields map[string]string) error {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return ErrInvalidFormID
	}

	s.mu.Lock()
	s.seq++
	s.pending[formID] = pendingDraft{fields: copyFields(fields), seq: s.seq}
	s.mu.Unlock()

	s.deb.Trigger(formID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.save(ctx, formID); err != nil {
			slog.Error("autosave failed", "form_id", formID, "error", err)
			s.fb.Notify("Não foi possível salvar o rascunho", feedback.Error, 0)
		}
	})
	return nil
}

// Load returns the most recent draft: the pending one if a save has not
// happened yet, otherwise the stored one.
func (s *Saver) Load(ctx context.Context, formID string) (Draft, error) {
	s.mu.Lock()
	p, ok := s.pending[formID]
	s.mu.Unlock()

	if ok {
		return Draft{FormID: formID, Fields: copyFields(p.fields)}, nil
	}
	return s.store.Load(ctx, formID)
}

// Discard drops the pending and stored draft of formID. A write already in
// flight finishes first, so it cannot bring the draft back.
func (s *Saver) Discard(ctx context.Context, formID string) error {
	s.deb.Cancel(formID)

	w := s.writer(formID)
	w.Lock()
	defer w.Unlock()

	s.mu.Lock()
	delete(s.pending, formID)
	s.mu.Unlock()

	return s.store.Delete(ctx, formID)
}

// writer returns the lock serializing store writes of formID.
func (s *Saver) writer(formID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writing[formID]
	if !ok {
		w = &sync.Mutex{}
		s.writing[formID] = w
	}
	return w
}

// Pending returns the number of drafts not yet written, including writes
// in flight.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush writes every pending draft immediately, cancelling its timer.
// Used on shutdown.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		s.deb.Cancel(id)
		if err := s.save(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Purge removes stored drafts older than maxAge.
func (s *Saver) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.store.Purge(ctx, s.now().Add(-maxAge))
}

// save writes the latest pending draft of formID. Writes of one form are
// serialized, and each one reads pending under the write lock, so a slow
// earlier write can never land after a newer one. The entry stays pending
// until a write of that exact edit succeeds, so a failure is retried by the
// next Touch or Flush.
func (s *Saver) save(ctx context.Context, formID string) error {
	w := s.writer(formID)
	w.Lock()
	defer w.Unlock()

	s.mu.Lock()
	p, ok := s.pending[formID]
	s.mu.Unlock()

	if !ok {
		return nil
	}

	if err := s.store.Save(ctx, Draft{FormID: formID, Fields: p.fields, SavedAt: s.now()}); err != nil {
		return fmt.Errorf("autosave %s: %w", formID, err)
	}

	s.mu.Lock()
	if cur, ok := s.pending[formID]; ok && cur.seq == p.seq {
		delete(s.pending, formID)
	}
	s.mu.Unlock()

	slog.Debug("draft saved", "form_id", formID, "fields", len(p.fields))
	return nil
}
