// Package table implements client-style table enhancement as a server-side
// state machine: search filtering, column sorting, and row selection with
// bulk actions.
//
// A [Table] is built once from a header and body. Rows are kept in an arena
// indexed by their original position (the row ID), so sorting only permutes
// the display order and never moves or destroys a row. An [Enhancer] wraps a
// Table and processes discrete commands, one at a time:
//
//	e := table.New(t, table.Options{})
//	e.SetQuery("maria")
//	e.ActivateSort(1)
//	e.ToggleRow(0, true)
//	view := e.Snapshot()
//
// Optional UI elements (search box, select-all control, bulk-action panel,
// stats display) are injected as [Bindings]; any of them may be nil.
package table

// SortState is the sort marker of a column.
type SortState int

const (
	SortNone SortState = iota
	SortAscending
	SortDescending
)

// String returns the marker value used in markup: "none", "asc" or "desc".
func (s SortState) String() string {
	switch s {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

func (s SortState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// next returns the state after activating an already-active column.
// none and desc both go to asc.
func (s SortState) next() SortState {
	if s == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// ColumnSpec describes a header cell when building a Table.
type ColumnSpec struct {
	Name     string `json:"name"`
	Sortable bool   `json:"sortable"`
}

// Column is a header cell with its current sort state.
type Column struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Sortable bool      `json:"sortable"`
	Sort     SortState `json:"sort"`
}

// Row is a body row. ID is the row's position in the original body and
// never changes.
type Row struct {
	ID       int      `json:"id"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
	Visible  bool     `json:"visible"`
}

// Cell returns the text at column i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Table holds the header and the row arena.
type Table struct {
	columns []Column
	rows    []Row
	order   []int // display order of row IDs
}

// NewTable builds a Table. Every row starts visible and unselected.
// Cell slices are copied.
func NewTable(columns []ColumnSpec, body [][]string) *Table {
	t := &Table{
		columns: make([]Column, len(columns)),
		rows:    make([]Row, len(body)),
		order:   make([]int, len(body)),
	}

	for i, c := range columns {
		t.columns[i] = Column{Index: i, Name: c.Name, Sortable: c.Sortable}
	}

	for i, cells := range body {
		t.rows[i] = Row{
			ID:      i,
			Cells:   append([]string(nil), cells...),
			Visible: true,
		}
		t.order[i] = i
	}

	return t
}

// Columns returns a copy of the header.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Len returns the number of body rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns copies of the rows in display order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.order))
	for i, id := range t.order {
		out[i] = t.rows[id]
	}
	return out
}

// Row returns the row with the given ID.
func (t *Table) Row(id int) (Row, bool) {
	if id < 0 || id >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[id], true
}

// Order returns a copy of the display order (row IDs).
func (t *Table) Order() []int {
	return append([]int(nil), t.order...)
}
