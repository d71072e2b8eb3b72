package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/TableUI/internal/autosave"
	"github.com/JonMunkholm/TableUI/internal/table"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// warmConcurrency caps concurrent loads during Warm.
const warmConcurrency = 4

// Service owns the open table sessions, the dataset body cache and the form
// draft saver.
type Service struct {
	db     DBTX
	cfg    ServiceConfig
	drafts *autosave.Saver
	loads  *LoadLimiter
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	cacheMu sync.Mutex
	cache   map[string]cachedBody
}

type cachedBody struct {
	rows     [][]string
	loadedAt time.Time
}

// NewService creates a Service. db may be nil, in which case drafts are kept
// in memory and datasets marked RequiresDB cannot be opened.
func NewService(ctx context.Context, db DBTX, cfg ServiceConfig) (*Service, error) {
	cfg = cfg.withDefaults()

	var store autosave.Store
	if db != nil {
		pg := autosave.NewPGStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("prepare draft store: %w", err)
		}
		store = pg
	} else {
		store = autosave.NewMemoryStore()
	}

	return &Service{
		db:       db,
		cfg:      cfg,
		drafts:   autosave.NewSaver(store, cfg.AutoSave, nil),
		loads:    NewLoadLimiter(cfg.MaxLoads, cfg.LoadWait),
		now:      time.Now,
		sessions: make(map[string]*Session),
		cache:    make(map[string]cachedBody),
	}, nil
}

// Drafts returns the form draft saver.
func (s *Service) Drafts() *autosave.Saver {
	return s.drafts
}

// HasDatabase reports whether a database is configured.
func (s *Service) HasDatabase() bool {
	return s.db != nil
}

// Available reports whether tableKey is registered and can be loaded with
// the current configuration.
func (s *Service) Available(tableKey string) bool {
	def, ok := Get(tableKey)
	return ok && (!def.RequiresDB || s.db != nil)
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// OpenSession loads tableKey and returns a new session holding a fresh
// Enhancer over it. The least recently used session is evicted when the
// session cap is reached.
func (s *Service) OpenSession(ctx context.Context, tableKey string) (*Session, error) {
	def, ok := Get(tableKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableKey)
	}

	body, err := s.body(ctx, def)
	if err != nil {
		return nil, err
	}

	enh := table.New(table.NewTable(def.Info.Columns, body), table.Options{
		Locale:  s.cfg.Locale,
		Actions: def.Actions,
	})

	now := s.now()
	sess := &Session{
		ID:       uuid.NewString(),
		Info:     def.Info,
		enh:      enh,
		created:  now,
		lastUsed: now,
	}

	s.mu.Lock()
	for len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Debug("session opened", "session_id", sess.ID, "table", tableKey, "rows", len(body))
	return sess, nil
}

// Session returns the open session id and marks it used.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// CloseSession drops a session. Returns false if it was not open.
func (s *Service) CloseSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sessions lists open sessions, most recently used first.
func (s *Service) Sessions() []SessionInfo {
	s.mu.Lock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.info())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	return out
}

// EvictIdle closes every session unused for longer than the session TTL.
func (s *Service) EvictIdle() int {
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *Service) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastUsed.Before(oldest.lastUsed) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
		slog.Info("session evicted", "session_id", oldest.ID, "table", oldest.Info.Key, "reason", "capacity")
	}
}

// body returns the table body, from cache when fresh.
func (s *Service) body(ctx context.Context, def TableDefinition) ([][]string, error) {
	key := def.Info.Key

	if s.cfg.CacheTTL > 0 {
		s.cacheMu.Lock()
		c, ok := s.cache[key]
		s.cacheMu.Unlock()
		if ok && s.now().Sub(c.loadedAt) < s.cfg.CacheTTL {
			return c.rows, nil
		}
	}

	if def.RequiresDB && s.db == nil {
		return nil, fmt.Errorf("load table %s: %w", key, ErrNoDatabase)
	}

	if err := s.loads.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("load table %s: %w", key, err)
	}
	defer s.loads.Release()

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
	defer cancel()

	start := time.Now()
	rows, err := def.Load(loadCtx, s.db)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", key, err)
	}
	slog.Debug("table loaded", "table", key, "rows", len(rows), "duration_ms", time.Since(start).Milliseconds())

	if s.cfg.CacheTTL > 0 {
		s.cacheMu.Lock()
		s.cache[key] = cachedBody{rows: rows, loadedAt: s.now()}
		s.cacheMu.Unlock()
	}

	return rows, nil
}

// InvalidateCache drops cached bodies. An empty key drops all of them.
func (s *Service) InvalidateCache(key string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if key == "" {
		s.cache = make(map[string]cachedBody)
		return
	}
	delete(s.cache, key)
}

// Warm loads every registered dataset concurrently so the first page view
// is served from cache. Datasets that need a missing database are skipped.
// Returns the joined load errors; a failed dataset does not stop the others.
func (s *Service) Warm(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, def := range All() {
		if def.RequiresDB && s.db == nil {
			continue
		}
		def := def
		g.Go(func() error {
			if _, err := s.body(gctx, def); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// LoadStatus reports the dataset loads in flight.
func (s *Service) LoadStatus() LoadLimiterStatus {
	return s.loads.Status()
}

// Close waits for in-flight loads and flushes pending drafts.
func (s *Service) Close(ctx context.Context) error {
	if err := s.loads.WaitForDrain(ctx); err != nil {
		slog.Warn("table loads still running at shutdown", "active", s.loads.ActiveCount())
	}
	if err := s.drafts.Flush(ctx); err != nil {
		return fmt.Errorf("flush drafts: %w", err)
	}
	return nil
}
