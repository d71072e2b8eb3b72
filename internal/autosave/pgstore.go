package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PGStore.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createDraftsTable = `
CREATE TABLE IF NOT EXISTS form_drafts (
	form_id  TEXT PRIMARY KEY,
	payload  JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
)`

// PGStore keeps drafts in the PostgreSQL table form_drafts.
type PGStore struct {
	db DBTX
}

// NewPGStore returns a PGStore on db. Call EnsureSchema once before use.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the form_drafts table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createDraftsTable); err != nil {
		return fmt.Errorf("create form_drafts: %w", err)
	}
	return nil
}

func (s *PGStore) Save(ctx context.Context, draft Draft) error {
	payload, err := json.Marshal(draft.Fields)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", draft.FormID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO form_drafts (form_id, payload, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (form_id) DO UPDATE
		SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at`,
		draft.FormID, payload, draft.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("save draft %s: %w", draft.FormID, err)
	}
	return nil
}

func (s *PGStore) Load(ctx context.Context, formID string) (Draft, error) {
	var (
		payload []byte
		savedAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT payload, saved_at FROM form_drafts WHERE form_id = $1`, formID,
	).Scan(&payload, &savedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft %s: %w", formID, err)
	}

	d := Draft{FormID: formID, SavedAt: savedAt}
	if err := json.Unmarshal(payload, &d.Fields); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", formID, err)
	}
	return d, nil
}

func (s *PGStore) Delete(ctx context.Context, formID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM form_drafts WHERE form_id = $1`, formID); err != nil {
		return fmt.Errorf("delete draft %s: %w", formID, err)
	}
	return nil
}

func (s *PGStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM form_drafts WHERE saved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return tag.RowsAffected(), nil
}
