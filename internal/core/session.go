package core

import (
	"sync"
	"time"

	"github.com/JonMunkholm/TableUI/internal/feedback"
	"github.com/JonMunkholm/TableUI/internal/table"
)

// Session is one open table page. Commands against it are serialized.
type Session struct {
	ID   string
	Info TableInfo

	mu  sync.Mutex
	enh *table.Enhancer

	// guarded by Service.mu
	created  time.Time
	lastUsed time.Time
}

// Do runs fn with exclusive access to the session's Enhancer. Bindings and
// the notifier are attached for the duration of fn only.
func (s *Session) Do(b table.Bindings, fb feedback.Notifier, fn func(e *table.Enhancer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enh.Attach(b, fb)
	defer s.enh.Detach()

	return fn(s.enh)
}

// Snapshot returns the current view.
func (s *Session) Snapshot() table.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enh.Snapshot()
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:       s.ID,
		TableKey: s.Info.Key,
		Created:  s.created,
		LastUsed: s.lastUsed,
	}
}
