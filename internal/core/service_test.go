package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/TableUI/internal/feedback"
	"github.com/JonMunkholm/TableUI/internal/table"
)

const clientesCSV = `Nome,Cidade,Saldo
Maria,São Paulo,1500
Ana,Recife,300
João,Curitiba,75
`

func registerClientes(loads *atomic.Int32) {
	load := CSVLoader([]byte(clientesCSV), true)
	Register(TableDefinition{
		Info: TableInfo{
			Key:   "clientes",
			Group: "Exemplos",
			Label: "Clientes",
			Columns: []table.ColumnSpec{
				{Name: "Nome", Sortable: true},
				{Name: "Cidade"},
				{Name: "Saldo", Sortable: true},
			},
		},
		Load: func(ctx context.Context, db DBTX) ([][]string, error) {
			if loads != nil {
				loads.Add(1)
			}
			return load(ctx, db)
		},
		Actions: []table.BulkAction{table.ExportCSV("clientes")},
	})
}

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), nil, cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestOpenSession(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)

	svc := newTestService(t, ServiceConfig{})
	sess, err := svc.OpenSession(context.Background(), "clientes")
	if err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}

	view := sess.Snapshot()
	if view.Stats.Total != 3 || view.Stats.Visible != 3 {
		t.Errorf("stats = %+v, want 3 total and visible", view.Stats)
	}
	if len(view.Columns) != 3 || !view.Columns[2].Sortable {
		t.Errorf("columns = %+v", view.Columns)
	}
	if len(view.Actions) != 2 || view.Actions[1].Name != table.ActionExport {
		t.Errorf("actions = %+v, want clear then export", view.Actions)
	}

	got, err := svc.Session(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Session(%s) = %v, %v", sess.ID, got, err)
	}
}

func TestOpenSession_Errors(t *testing.T) {
	Clear()
	defer Clear()
	Register(TableDefinition{
		Info:       TableInfo{Key: "pg_tables", Columns: []table.ColumnSpec{{Name: "Tabela"}}},
		Load:       QueryLoader("SELECT 1"),
		RequiresDB: true,
	})

	svc := newTestService(t, ServiceConfig{})

	if _, err := svc.OpenSession(context.Background(), "vendas"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("unknown table err = %v, want ErrTableNotFound", err)
	}
	if _, err := svc.OpenSession(context.Background(), "pg_tables"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("db table err = %v, want ErrNoDatabase", err)
	}
	if _, err := svc.Session("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)

	svc := newTestService(t, ServiceConfig{})
	a, _ := svc.OpenSession(context.Background(), "clientes")
	b, _ := svc.OpenSession(context.Background(), "clientes")

	err := a.Do(table.Bindings{}, nil, func(e *table.Enhancer) error {
		e.ToggleAll(true)
		_, err := e.ActivateSort(0)
		return err
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if got := a.Snapshot().Selection.Selected; got != 3 {
		t.Errorf("session a selected = %d, want 3", got)
	}
	vb := b.Snapshot()
	if vb.Selection.Selected != 0 {
		t.Errorf("session b selected = %d, want 0", vb.Selection.Selected)
	}
	if vb.Columns[0].Sort != table.SortNone {
		t.Errorf("session b sort = %v, want none", vb.Columns[0].Sort)
	}
}

func TestSession_DoDetachesBindings(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)

	svc := newTestService(t, ServiceConfig{})
	sess, _ := svc.OpenSession(context.Background(), "clientes")

	rec := feedback.NewRecorder()
	_ = sess.Do(table.Bindings{}, rec, func(e *table.Enhancer) error {
		_, err := e.RunBulkAction(context.Background(), table.ActionExport)
		return err
	})
	if len(rec.Toasts()) != 1 || rec.Toasts()[0].Severity != feedback.Warning {
		t.Fatalf("toasts = %+v, want one warning", rec.Toasts())
	}

	// After Do returns the recorder no longer receives feedback.
	_ = sess.Do(table.Bindings{}, nil, func(e *table.Enhancer) error {
		_, err := e.RunBulkAction(context.Background(), table.ActionExport)
		return err
	})
	if len(rec.Toasts()) != 1 {
		t.Errorf("detached recorder got %d toasts", len(rec.Toasts()))
	}
}

func TestBodyCache(t *testing.T) {
	Clear()
	defer Clear()
	var loads atomic.Int32
	registerClientes(&loads)

	svc := newTestService(t, ServiceConfig{CacheTTL: time.Minute})
	now := time.Now()
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	svc.OpenSession(ctx, "clientes")
	svc.OpenSession(ctx, "clientes")
	if loads.Load() != 1 {
		t.Fatalf("loads = %d, want 1 while cached", loads.Load())
	}

	now = now.Add(2 * time.Minute)
	svc.OpenSession(ctx, "clientes")
	if loads.Load() != 2 {
		t.Fatalf("loads = %d, want 2 after expiry", loads.Load())
	}

	svc.InvalidateCache("clientes")
	svc.OpenSession(ctx, "clientes")
	if loads.Load() != 3 {
		t.Fatalf("loads = %d, want 3 after invalidation", loads.Load())
	}
}

func TestBodyCache_Disabled(t *testing.T) {
	Clear()
	defer Clear()
	var loads atomic.Int32
	registerClientes(&loads)

	svc := newTestService(t, ServiceConfig{CacheTTL: -1})
	svc.OpenSession(context.Background(), "clientes")
	svc.OpenSession(context.Background(), "clientes")
	if loads.Load() != 2 {
		t.Errorf("loads = %d, want 2 with caching disabled", loads.Load())
	}
}

func TestMaxSessions_EvictsLeastRecentlyUsed(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)

	svc := newTestService(t, ServiceConfig{MaxSessions: 2})
	now := time.Now()
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	first, _ := svc.OpenSession(ctx, "clientes")
	now = now.Add(time.Second)
	second, _ := svc.OpenSession(ctx, "clientes")

	now = now.Add(time.Second)
	if _, err := svc.Session(first.ID); err != nil {
		t.Fatalf("touch first: %v", err)
	}

	now = now.Add(time.Second)
	svc.OpenSession(ctx, "clientes")

	if svc.SessionCount() != 2 {
		t.Fatalf("SessionCount() = %d, want 2", svc.SessionCount())
	}
	if _, err := svc.Session(second.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("least recently used session should have been evicted")
	}
	if _, err := svc.Session(first.ID); err != nil {
		t.Error("recently used session should survive")
	}
}

func TestSweep(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)

	svc := newTestService(t, ServiceConfig{SessionTTL: time.Minute})
	now := time.Now()
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	idle, _ := svc.OpenSession(ctx, "clientes")
	now = now.Add(50 * time.Second)
	active, _ := svc.OpenSession(ctx, "clientes")
	now = now.Add(20 * time.Second)

	res := svc.Sweep(ctx)
	if res.SessionsEvicted != 1 {
		t.Errorf("SessionsEvicted = %d, want 1", res.SessionsEvicted)
	}
	if _, err := svc.Session(idle.ID); err == nil {
		t.Error("idle session should be closed")
	}
	if _, err := svc.Session(active.ID); err != nil {
		t.Error("active session should stay open")
	}

	if !svc.CloseSession(active.ID) || svc.CloseSession(active.ID) {
		t.Error("CloseSession should succeed once")
	}
}

func TestWarm(t *testing.T) {
	Clear()
	defer Clear()
	var loads atomic.Int32
	registerClientes(&loads)
	Register(TableDefinition{
		Info:       TableInfo{Key: "pg_tables", Group: "PostgreSQL", Columns: []table.ColumnSpec{{Name: "Tabela"}}},
		Load:       QueryLoader("SELECT 1"),
		RequiresDB: true,
	})
	Register(TableDefinition{
		Info: TableInfo{Key: "quebrada", Group: "Exemplos", Columns: []table.ColumnSpec{{Name: "A"}}},
		Load: CSVLoader([]byte("a,b\nc\n"), false),
	})

	svc := newTestService(t, ServiceConfig{})
	err := svc.Warm(context.Background())
	if err == nil || MapError(err).Code != "TBL004" {
		t.Fatalf("Warm() err = %v, want the broken dataset's load error", err)
	}
	if loads.Load() != 1 {
		t.Errorf("clientes loads = %d, want 1", loads.Load())
	}

	svc.OpenSession(context.Background(), "clientes")
	if loads.Load() != 1 {
		t.Errorf("OpenSession after Warm reloaded: loads = %d", loads.Load())
	}
}

func TestListTablesByGroup(t *testing.T) {
	Clear()
	defer Clear()
	registerClientes(nil)
	Register(testDef("pg_tables", "PostgreSQL"))

	svc := newTestService(t, ServiceConfig{})
	groups := svc.ListTablesByGroup()
	if len(groups["Exemplos"]) != 1 || len(groups["PostgreSQL"]) != 1 {
		t.Errorf("ListTablesByGroup() = %v", groups)
	}
	if len(svc.ListTables()) != 2 {
		t.Errorf("ListTables() = %d tables, want 2", len(svc.ListTables()))
	}
}

func TestClose_FlushesDrafts(t *testing.T) {
	svc := newTestService(t, ServiceConfig{})

	if err := svc.Drafts().Touch("contato", map[string]string{"nome": "Ana"}); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if svc.Drafts().Pending() != 0 {
		t.Errorf("Pending() = %d after Close", svc.Drafts().Pending())
	}

	d, err := svc.Drafts().Load(context.Background(), "contato")
	if err != nil || d.Fields["nome"] != "Ana" {
		t.Errorf("Load() = %+v, %v", d, err)
	}
}
