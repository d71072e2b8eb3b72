package core

import (
	"context"
	"testing"

	"github.com/JonMunkholm/TableUI/internal/table"
)

func testDef(key, group string) TableDefinition {
	return TableDefinition{
		Info: TableInfo{
			Key:     key,
			Group:   group,
			Columns: []table.ColumnSpec{{Name: "Nome", Sortable: true}},
		},
		Load: func(context.Context, DBTX) ([][]string, error) { return nil, nil },
	}
}

func TestRegistry(t *testing.T) {
	Clear()
	defer Clear()

	Register(testDef("pedidos", "Exemplos"))
	Register(testDef("clientes", "Exemplos"))
	Register(testDef("pg_tables", "PostgreSQL"))

	if TableCount() != 3 {
		t.Fatalf("TableCount() = %d, want 3", TableCount())
	}

	def, ok := Get("clientes")
	if !ok {
		t.Fatal("Get(clientes) not found")
	}
	if def.Info.Label != "clientes" {
		t.Errorf("Label = %q, want key as default", def.Info.Label)
	}

	all := All()
	wantOrder := []string{"clientes", "pedidos", "pg_tables"}
	for i, key := range wantOrder {
		if all[i].Info.Key != key {
			t.Errorf("All()[%d] = %q, want %q", i, all[i].Info.Key, key)
		}
	}

	groups := Groups()
	if len(groups) != 2 || groups[0] != "Exemplos" || groups[1] != "PostgreSQL" {
		t.Errorf("Groups() = %v", groups)
	}

	if got := ByGroup("Exemplos"); len(got) != 2 || got[0].Info.Key != "clientes" {
		t.Errorf("ByGroup(Exemplos) = %v", got)
	}

	if _, ok := Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}
}

func noopAction(context.Context, []table.Column, []table.Row) (table.ActionResult, error) {
	return table.ActionResult{}, nil
}

func withActions(def TableDefinition, actions ...table.BulkAction) TableDefinition {
	def.Actions = actions
	return def
}

func TestRegistry_CollationOrder(t *testing.T) {
	Clear()
	defer Clear()

	for _, d := range []struct{ key, label, group string }{
		{"zebra", "zebra", "Exemplos"},
		{"bancos", "Bancos", "Exemplos"},
		{"arvores", "Árvores", "Exemplos"},
		{"extra", "Extra", "Álbuns"},
	} {
		def := testDef(d.key, d.group)
		def.Info.Label = d.label
		Register(def)
	}

	var got []string
	for _, def := range ByGroup("Exemplos") {
		got = append(got, def.Info.Key)
	}
	want := []string{"arvores", "bancos", "zebra"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("ByGroup order = %v, want %v", got, want)
		}
	}

	if groups := Groups(); len(groups) != 2 || groups[0] != "Álbuns" {
		t.Errorf("Groups() = %v, want Álbuns first", groups)
	}
	if all := All(); len(all) != 4 || all[0].Info.Key != "extra" {
		t.Errorf("All()[0] = %v, want extra", all[0].Info.Key)
	}
}

func TestRegister_CopiesSlices(t *testing.T) {
	Clear()
	defer Clear()

	def := testDef("clientes", "G")
	Register(def)
	def.Info.Columns[0].Name = "Alterado"

	got, _ := Get("clientes")
	if got.Info.Columns[0].Name != "Nome" {
		t.Errorf("registered column changed to %q", got.Info.Columns[0].Name)
	}
}

func TestRegister_Panics(t *testing.T) {
	tests := []struct {
		name string
		def  TableDefinition
	}{
		{"duplicate", testDef("dup", "G")},
		{"no loader", TableDefinition{Info: TableInfo{Key: "x", Columns: []table.ColumnSpec{{Name: "A"}}}}},
		{"no columns", TableDefinition{Info: TableInfo{Key: "y"}, Load: testDef("", "").Load}},
		{"key with spaces", testDef("Clientes Novos", "G")},
		{"empty key", testDef("", "G")},
		{"shadows clear", withActions(testDef("a", "G"), table.BulkAction{Name: table.ActionClear, Run: noopAction})},
		{"duplicate action", withActions(testDef("b", "G"),
			table.BulkAction{Name: "x", Run: noopAction},
			table.BulkAction{Name: "x", Run: noopAction})},
		{"action without run", withActions(testDef("c", "G"), table.BulkAction{Name: "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Clear()
			defer Clear()
			Register(testDef("dup", "G"))

			defer func() {
				if recover() == nil {
					t.Error("Register did not panic")
				}
			}()
			Register(tt.def)
		})
	}
}
