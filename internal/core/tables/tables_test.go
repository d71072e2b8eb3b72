package tables

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/table"
)

func TestNormalizeUF(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"São Paulo", "SP"},
		{"  paraná ", "PR"},
		{"rio grande do norte", "RN"},
		{"rj", "RJ"},
		{"SC", "SC"},
		{"Atlântida", "Atlântida"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUF(tt.in); got != tt.want {
			t.Errorf("NormalizeUF(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSampleDatasets_Load(t *testing.T) {
	for _, key := range []string{"clientes", "pedidos"} {
		t.Run(key, func(t *testing.T) {
			def, ok := core.Get(key)
			if !ok {
				t.Fatalf("%s not registered", key)
			}

			rows, err := def.Load(context.Background(), nil)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(rows) == 0 {
				t.Fatal("Load() returned no rows")
			}
			for i, r := range rows {
				if len(r) != len(def.Info.Columns) {
					t.Errorf("row %d has %d cells, want %d", i, len(r), len(def.Info.Columns))
				}
			}
		})
	}
}

func TestClientes_UFNormalized(t *testing.T) {
	def, _ := core.Get("clientes")
	rows, err := def.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, r := range rows {
		if len(r[2]) != 2 || strings.ToUpper(r[2]) != r[2] {
			t.Errorf("UF %q for %s is not an abbreviation", r[2], r[0])
		}
	}
}

func TestPostgresDatasets_RequireDB(t *testing.T) {
	for _, key := range []string{"pg_tables", "rascunhos"} {
		def, ok := core.Get(key)
		if !ok {
			t.Fatalf("%s not registered", key)
		}
		if !def.RequiresDB {
			t.Errorf("%s should require a database", key)
		}
		if _, err := def.Load(context.Background(), nil); !errors.Is(err, core.ErrNoDatabase) {
			t.Errorf("%s Load(nil db) err = %v, want ErrNoDatabase", key, err)
		}
	}
}

func TestSumColumn(t *testing.T) {
	cols := []table.Column{{Index: 0, Name: "Pedido"}, {Index: 1, Name: "Valor"}}
	rows := []table.Row{
		{ID: 0, Cells: []string{"1", "10.50"}},
		{ID: 1, Cells: []string{"2", "1.000,00"}},
		{ID: 2, Cells: []string{"3", "n/d"}},
	}

	res, err := SumColumn(ActionSum, "Somar", "Valor").Run(context.Background(), cols, rows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Rows)
	}
	if !strings.HasPrefix(res.Message, "Total de 3 linha(s): R$ ") {
		t.Errorf("Message = %q", res.Message)
	}
	if !strings.Contains(res.Message, "010,50") {
		t.Errorf("Message = %q, want 1010,50 with pt-BR decimal comma", res.Message)
	}

	_, err = SumColumn(ActionSum, "Somar", "Preço").Run(context.Background(), cols, rows)
	if !errors.Is(err, table.ErrColumnOutOfRange) {
		t.Errorf("missing column err = %v, want ErrColumnOutOfRange", err)
	}
}

func TestPedidos_SumThroughEnhancer(t *testing.T) {
	def, _ := core.Get("pedidos")
	body, err := def.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e := table.New(table.NewTable(def.Info.Columns, body), table.Options{Actions: def.Actions})
	e.ToggleRow(0, true)
	e.ToggleRow(1, true)

	res, err := e.RunBulkAction(context.Background(), ActionSum)
	if err != nil {
		t.Fatalf("RunBulkAction() error = %v", err)
	}
	if res.Action != ActionSum || res.Rows != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestPedidos_DateColumnNotSortable(t *testing.T) {
	def, _ := core.Get("pedidos")
	body, err := def.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e := table.New(table.NewTable(def.Info.Columns, body), table.Options{Actions: def.Actions})
	if _, err := e.ActivateSort(2); !errors.Is(err, table.ErrColumnNotSortable) {
		t.Errorf("ActivateSort(Data) err = %v, want ErrColumnNotSortable", err)
	}
	if _, err := e.ActivateSort(4); err != nil {
		t.Errorf("ActivateSort(Valor) err = %v", err)
	}
}

func TestContatoForm(t *testing.T) {
	f, ok := forms.Get("contato")
	if !ok {
		t.Fatal("contato form not registered")
	}

	res := f.Validate(map[string]string{
		"nome":     "Ana",
		"email":    "ana@exemplo.com.br",
		"telefone": "(11) 91234-5678",
		"uf":       "pe",
		"mensagem": "Olá",
	})
	if !res.Valid {
		t.Errorf("expected valid, got %+v", res.Errors)
	}

	res = f.Validate(map[string]string{"telefone": "123"})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if got := res.Message("telefone"); got != "informe um telefone com DDD" {
		t.Errorf("telefone message = %q", got)
	}
	if res.Message("nome") == "" || res.Message("mensagem") == "" {
		t.Error("required fields should report errors")
	}
}
