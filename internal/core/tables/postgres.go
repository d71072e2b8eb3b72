package tables

import (
	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/table"
)

const postgresGroup = "PostgreSQL"

func init() {
	registerCatalog()
	registerDrafts()
}

func registerCatalog() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "pg_tables",
			Group:       postgresGroup,
			Label:       "Tabelas do banco",
			Description: "Tabelas e views visíveis em information_schema",
			Columns: []table.ColumnSpec{
				{Name: "Schema", Sortable: true},
				{Name: "Tabela", Sortable: true},
				{Name: "Tipo", Sortable: true},
			},
		},
		Load: core.QueryLoader(`
			SELECT table_schema, table_name, table_type
			FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`),
		RequiresDB: true,
		Actions:    []table.BulkAction{table.ExportCSV("tabelas")},
	})
}

func registerDrafts() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:         "rascunhos",
			Group:       postgresGroup,
			Label:       "Rascunhos salvos",
			Description: "Rascunhos de formulário gravados pelo salvamento automático",
			Columns: []table.ColumnSpec{
				{Name: "Formulário", Sortable: true},
				{Name: "Campos", Sortable: true},
				{Name: "Salvo em", Sortable: true},
			},
		},
		Load: core.QueryLoader(`
			SELECT form_id,
			       (SELECT count(*) FROM jsonb_object_keys(payload)),
			       saved_at
			FROM form_drafts
			ORDER BY saved_at DESC`),
		RequiresDB: true,
		Actions:    []table.BulkAction{table.ExportCSV("rascunhos")},
	})
}
