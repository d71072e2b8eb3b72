package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestCSVLoader(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		hasHeader bool
		want      [][]string
	}{
		{
			name:      "header dropped",
			data:      "Nome,Idade\nMaria,30\nJoão,25\n",
			hasHeader: true,
			want:      [][]string{{"Maria", "30"}, {"João", "25"}},
		},
		{
			name:      "no header",
			data:      "Maria,30\n",
			hasHeader: false,
			want:      [][]string{{"Maria", "30"}},
		},
		{
			name:      "utf-8 BOM stripped",
			data:      "\xEF\xBB\xBFNome\nÁlvaro\n",
			hasHeader: false,
			want:      [][]string{{"Nome"}, {"Álvaro"}},
		},
		{
			name:      "invalid utf-8 replaced",
			data:      "Jo\xE3o\n",
			hasHeader: false,
			want:      [][]string{{"Jo�o"}},
		},
		{
			name:      "quoted comma and leading space",
			data:      `"Silva, Ana", 1.234`,
			hasHeader: false,
			want:      [][]string{{"Silva, Ana", "1.234"}},
		},
		{
			name:      "spreadsheet export artifacts",
			data:      "=\"00123\",  Ana  ,=42\n",
			hasHeader: false,
			want:      [][]string{{"00123", "Ana", "42"}},
		},
		{
			name:      "empty document",
			data:      "",
			hasHeader: true,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CSVLoader([]byte(tt.data), tt.hasHeader)(context.Background(), nil)
			if err != nil {
				t.Fatalf("load error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("row %d = %q, want %q", i, got[i], tt.want[i])
				}
				for j := range tt.want[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("cell [%d][%d] = %q, want %q", i, j, got[i][j], tt.want[i][j])
					}
				}
			}
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{"", ""},
		{"  hello  ", "hello"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{`'single'`, "single"},
		{`=""`, ""},
		{"=", ""},
		{"a=b", "a=b"},
	}

	for _, tt := range tests {
		if got := cleanCell(tt.input); got != tt.want {
			t.Errorf("cleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCSVLoader_RaggedRows(t *testing.T) {
	_, err := CSVLoader([]byte("a,b\nc\n"), false)(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for inconsistent field count")
	}
}

func TestCSVLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CSVLoader([]byte("a\nb\n"), false)(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestQueryLoader_NoDatabase(t *testing.T) {
	_, err := QueryLoader("SELECT 1")(context.Background(), nil)
	if !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("err = %v, want ErrNoDatabase", err)
	}
}

func TestQueryLoader(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{"pg_class", int64(412), true},
		{"pg_type", int64(613), false},
	}}

	got, err := QueryLoader("SELECT name, n, ok FROM t WHERE s = $1", "public")(context.Background(), db)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}

	if db.query != "SELECT name, n, ok FROM t WHERE s = $1" || len(db.args) != 1 || db.args[0] != "public" {
		t.Errorf("query = %q args = %v", db.query, db.args)
	}

	want := [][]string{{"pg_class", "412", "Sim"}, {"pg_type", "613", "Não"}}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("cell [%d][%d] = %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestQueryLoader_QueryError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection refused")}

	_, err := QueryLoader("SELECT 1")(context.Background(), db)
	if err == nil || MapError(err).Code != "DB004" {
		t.Fatalf("err = %v, want DB004 mapping", err)
	}
}

func TestFormatCell(t *testing.T) {
	var num pgtype.Numeric
	if err := num.Scan("1234.5"); err != nil {
		t.Fatalf("scan numeric: %v", err)
	}
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"numeric", num, "1234.50"},
		{"invalid numeric", pgtype.Numeric{}, ""},
		{"date", pgtype.Date{Time: day, Valid: true}, "2024-03-15"},
		{"timestamptz", pgtype.Timestamptz{Time: day.Add(90 * time.Minute), Valid: true}, "2024-03-15 01:30"},
		{"text", pgtype.Text{String: "Ana", Valid: true}, "Ana"},
		{"null text", pgtype.Text{}, ""},
		{"bool", pgtype.Bool{Bool: true, Valid: true}, "Sim"},
		{"uuid", pgtype.UUID{Bytes: id, Valid: true}, id.String()},
		{"raw uuid", [16]byte(id), id.String()},
		{"midnight time", day, "2024-03-15"},
		{"zero time", time.Time{}, ""},
		{"whole float", float64(42), "42"},
		{"fractional float", 3.14159, "3.14"},
		{"int32", int32(-7), "-7"},
		{"bytes", []byte("abc"), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCell(tt.in); got != tt.want {
				t.Errorf("formatCell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// fakeDB serves fixed rows from Query.
type fakeDB struct {
	rows  [][]any
	err   error
	query string
	args  []any
}

func (f *fakeDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	f.query = sql
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRows{rows: f.rows, pos: -1}, nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Scan(...any) error                            { return errors.New("not supported") }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos], nil
}
