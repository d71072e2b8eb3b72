package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/TableUI/internal/autosave"
	"github.com/JonMunkholm/TableUI/internal/table"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/language"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoDatabase      = errors.New("no database configured")
)

// TableInfo contains display information about a dataset.
type TableInfo struct {
	Key         string             `json:"key"`         // Unique identifier: "clientes"
	Group       string             `json:"group"`       // Dashboard group: "Exemplos", "PostgreSQL"
	Label       string             `json:"label"`       // Display name: "Clientes"
	Description string             `json:"description"` // One-line summary shown on the dashboard
	Columns     []table.ColumnSpec `json:"columns"`     // Header, with sort markers
}

// LoadFunc produces the table body. db is nil when no database is configured.
type LoadFunc func(ctx context.Context, db DBTX) ([][]string, error)

// TableDefinition contains everything needed to open a table session.
type TableDefinition struct {
	Info TableInfo
	Load LoadFunc

	// RequiresDB marks datasets that cannot load without a database.
	// They are listed but skipped during warm-up.
	RequiresDB bool

	// Actions are offered in the bulk panel next to the built-in clear.
	Actions []table.BulkAction
}

// ServiceConfig holds Service settings. Zero values fall back to defaults.
type ServiceConfig struct {
	Locale         language.Tag
	SessionTTL     time.Duration // default: 30m
	MaxSessions    int           // default: 1000
	CacheTTL       time.Duration // default: 5m; negative disables caching
	LoadTimeout    time.Duration // default: 10s
	MaxLoads       int           // concurrent loads; default: DefaultMaxConcurrentLoads
	LoadWait       time.Duration // wait for a load slot; default: DefaultLoadWait
	AutoSave       autosave.Config
	DraftRetention time.Duration // default: 168h
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.Locale == language.Und {
		c.Locale = table.DefaultLocale
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 1000
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 10 * time.Second
	}
	if c.DraftRetention <= 0 {
		c.DraftRetention = 7 * 24 * time.Hour
	}
	return c
}

// SessionInfo describes an open session for listings and logs.
type SessionInfo struct {
	ID       string    `json:"id"`
	TableKey string    `json:"table_key"`
	Created  time.Time `json:"created"`
	LastUsed time.Time `json:"last_used"`
}

// SweepResult reports one maintenance cycle.
type SweepResult struct {
	SessionsEvicted int
	DraftsPurged    int64
}
