// Package autosave persists form drafts with a debounce: while a user keeps
// typing, edits only update the pending draft; once the form has been quiet
// for the configured delay, the latest draft is written through to a [Store].
// The last write wins.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrDraftNotFound is returned by Store.Load when no draft exists.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrInvalidFormID is returned for an empty form identifier.
	ErrInvalidFormID = errors.New("invalid form id")
)

// Draft is the saved field map of one form.
type Draft struct {
	FormID  string            `json:"formId"`
	Fields  map[string]string `json:"fields"`
	SavedAt time.Time         `json:"savedAt"`
}

// Store is the key-value persistence behind auto-save.
// The key is the form identifier.
type Store interface {
	Save(ctx context.Context, draft Draft) error
	Load(ctx context.Context, formID string) (Draft, error)
	Delete(ctx context.Context, formID string) error
	// Purge removes drafts saved before cutoff and returns how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (m *MemoryStore) Save(_ context.Context, draft Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft.Fields = copyFields(draft.Fields)
	m.drafts[draft.FormID] = draft
	return nil
}

func (m *MemoryStore) Load(_ context.Context, formID string) (Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[formID]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	d.Fields = copyFields(d.Fields)
	return d, nil
}

func (m *MemoryStore) Delete(_ context.Context, formID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, formID)
	return nil
}

func (m *MemoryStore) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, d := range m.drafts {
		if d.SavedAt.Before(cutoff) {
			delete(m.drafts, id)
			n++
		}
	}
	return n, nil
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
