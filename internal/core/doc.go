// Package core provides the table-session service behind the web layer.
//
// It holds no HTTP or HTML concerns and can be driven by handlers or tests
// directly.
//
// # Dataset Registry
//
// Datasets are registered at init time using [Register]. Each
// [TableDefinition] names its header and how to load its body:
//
//	core.Register(core.TableDefinition{
//	    Info: core.TableInfo{
//	        Key:   "clientes",
//	        Group: "Exemplos",
//	        Label: "Clientes",
//	        Columns: []table.ColumnSpec{
//	            {Name: "Nome", Sortable: true},
//	            {Name: "Saldo", Sortable: true},
//	        },
//	    },
//	    Load:    core.CSVLoader(clientesCSV, true),
//	    Actions: []table.BulkAction{table.ExportCSV("clientes")},
//	})
//
// [CSVLoader] reads in-memory CSV. [QueryLoader] runs a PostgreSQL query and
// requires a database.
//
// # Sessions
//
// [Service.OpenSession] loads a dataset (from a short-lived cache when
// possible) and wraps it in a [table.Enhancer]. Every page view gets its own
// session, so selection and sort state never leak between pages. Commands
// against a session run under its lock via [Session.Do].
//
// Idle sessions are closed by [Service.StartSweeper], which also purges
// expired form drafts.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a code for support reference:
//
//   - TBL001-TBL004: table lookup, sort and load errors
//   - ROW001, BULK001-BULK002: selection and bulk action errors
//   - SES001: expired sessions
//   - FORM001-FORM003: form and draft errors
//   - DB004-DB008: database errors
package core
