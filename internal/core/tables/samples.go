package tables

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed data/clientes.csv
var clientesCSV []byte

//go:embed data/pedidos.csv
var pedidosCSV []byte

const sampleGroup = "Exemplos"

// ActionSum is the bulk action that totals the value column of orders.
const ActionSum = "somar"

var brl = message.NewPrinter(language.BrazilianPortuguese)

func init() {
	registerClientes()
	registerPedidos()
}

func registerClientes() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "clientes",
			Group:       sampleGroup,
			Label:       "Clientes",
			Description: "Cadastro de clientes com cidade, idade e saldo",
			Columns: []table.ColumnSpec{
				{Name: "Nome", Sortable: true},
				{Name: "Cidade", Sortable: true},
				{Name: "UF", Sortable: true},
				{Name: "Idade", Sortable: true},
				{Name: "Saldo", Sortable: true},
			},
		},
		Load: withNormalizers(core.CSVLoader(clientesCSV, true), map[int]func(string) string{
			2: NormalizeUF,
		}),
		Actions: []table.BulkAction{table.ExportCSV("clientes")},
	})
}

func registerPedidos() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "pedidos",
			Group:       sampleGroup,
			Label:       "Pedidos",
			Description: "Pedidos recentes por cliente e status",
			Columns: []table.ColumnSpec{
				{Name: "Pedido", Sortable: true},
				{Name: "Cliente", Sortable: true},
				// The numeric comparator reads ISO dates as their year.
				{Name: "Data"},
				{Name: "Status"},
				{Name: "Valor", Sortable: true},
			},
		},
		Load: core.CSVLoader(pedidosCSV, true),
		Actions: []table.BulkAction{
			table.ExportCSV("pedidos"),
			SumColumn(ActionSum, "Somar valores", "Valor"),
		},
	})
}

// SumColumn returns a bulk action that totals the named column over the
// selected rows. Cells that are not numbers are skipped.
func SumColumn(name, label, column string) table.BulkAction {
	return table.BulkAction{
		Name:  name,
		Label: label,
		Run: func(_ context.Context, columns []table.Column, rows []table.Row) (table.ActionResult, error) {
			idx := -1
			for _, c := range columns {
				if c.Name == column {
					idx = c.Index
					break
				}
			}
			if idx < 0 {
				return table.ActionResult{}, fmt.Errorf("sum: %w: %s", table.ErrColumnOutOfRange, column)
			}

			var total float64
			for _, r := range rows {
				if v, ok := forms.ParseNumber(r.Cell(idx)); ok {
					total += v
				}
			}

			return table.ActionResult{
				Rows:    len(rows),
				Message: brl.Sprintf("Total de %d linha(s): R$ %.2f", len(rows), total),
			}, nil
		},
	}
}
