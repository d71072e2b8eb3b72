package table

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/TableUI/internal/feedback"
)

// ============================================================================
// Helpers
// ============================================================================

func peopleTable() *Table {
	return NewTable(
		[]ColumnSpec{{Name: "Nome", Sortable: true}, {Name: "Idade", Sortable: true}},
		[][]string{{"Maria", "10"}, {"Ana", "2"}, {"João", "9"}},
	)
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cell(0)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recorder implements every binding and remembers the last update.
type recorder struct {
	query      string
	selectAll  CheckState
	bulkShown  bool
	bulkCount  int
	stats      Stats
	columns    []Column
	rows       []Row
	bulkCalls  int
	statsCalls int
}

func (r *recorder) SetQuery(q string) { r.query = q }
func (r *recorder) SetState(s CheckState) { r.selectAll = s }
func (r *recorder) Update(visible bool, n int) { r.bulkShown, r.bulkCount = visible, n; r.bulkCalls++ }
func (r *recorder) Publish(s Stats) { r.stats = s; r.statsCalls++ }
func (r *recorder) SetSort(cols []Column) { r.columns = cols }
func (r *recorder) RenderRows(rows []Row) { r.rows = rows }
func (r *recorder) bindings() Bindings {
	return Bindings{Search: r, SelectAll: r, Bulk: r, Stats: r, Sort: r, Body: r}
}

// ============================================================================
// Search
// ============================================================================

func TestSetQuery_MatchesConcatenatedLowercaseText(t *testing.T) {
	body := [][]string{
		{"Maria", "10"},
		{"Ana", "2"},
		{"João", "9"},
		{"MARIANA", "31"},
	}
	queries := []string{"", "maria", "MARIA", "ana", "a1", "ria1", "9", "joão", "x", " "}

	for _, q := range queries {
		e := New(NewTable([]ColumnSpec{{Name: "Nome"}, {Name: "Idade"}}, body), Options{})
		e.SetQuery(q)

		for _, r := range e.Snapshot().Rows {
			want := strings.Contains(strings.ToLower(strings.Join(r.Cells, "")), strings.ToLower(q))
			if r.Visible != want {
				t.Errorf("query %q row %v: Visible = %v, want %v", q, r.Cells, r.Visible, want)
			}
		}
	}
}

func TestSetQuery_EmptyRestoresAllRows(t *testing.T) {
	e := New(peopleTable(), Options{})

	if got := e.SetQuery("maria").Visible; got != 1 {
		t.Fatalf("Visible after filter = %d, want 1", got)
	}

	stats := e.SetQuery("")
	if stats.Visible != 3 || stats.Total != 3 {
		t.Errorf("stats = %+v, want 3/3 visible", stats)
	}
	for _, r := range e.Snapshot().Rows {
		if !r.Visible {
			t.Errorf("row %v hidden after empty query", r.Cells)
		}
	}
}

func TestSetQuery_PublishesStats(t *testing.T) {
	rec := &recorder{}
	e := New(peopleTable(), Options{})
	e.Attach(rec.bindings(), nil)

	e.SetQuery("an")

	if rec.statsCalls != 1 {
		t.Errorf("stats published %d times, want 1", rec.statsCalls)
	}
	if rec.stats.Visible != 1 || rec.stats.Total != 3 {
		t.Errorf("published stats = %+v, want 1 of 3", rec.stats)
	}
	if rec.query != "an" {
		t.Errorf("search box = %q, want %q", rec.query, "an")
	}
}

func TestSetQuery_KeepsSelection(t *testing.T) {
	e := New(peopleTable(), Options{})
	e.ToggleRow(0, true)
	e.SetQuery("ana")

	r, _ := e.table.Row(0)
	if r.Visible || !r.Selected {
		t.Errorf("row 0 = %+v, want hidden and still selected", r)
	}
}

// ============================================================================
// Sort
// ============================================================================

func TestActivateSort_Scenario(t *testing.T) {
	e := New(peopleTable(), Options{})

	if _, err := e.ActivateSort(1); err != nil {
		t.Fatalf("ActivateSort error = %v", err)
	}
	if got, want := names(e.Snapshot().Rows), []string{"Ana", "João", "Maria"}; !equalStrings(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}

	if _, err := e.ActivateSort(1); err != nil {
		t.Fatalf("ActivateSort error = %v", err)
	}
	if got, want := names(e.Snapshot().Rows), []string{"Maria", "João", "Ana"}; !equalStrings(got, want) {
		t.Errorf("descending = %v, want %v", got, want)
	}
}

func TestActivateSort_Cycle(t *testing.T) {
	e := New(peopleTable(), Options{})

	want := []SortState{SortAscending, SortDescending, SortAscending}
	for i, w := range want {
		got, err := e.ActivateSort(0)
		if err != nil {
			t.Fatalf("activation %d: error = %v", i+1, err)
		}
		if got != w {
			t.Errorf("activation %d: state = %v, want %v", i+1, got, w)
		}
	}
}

func TestActivateSort_ColumnExclusivity(t *testing.T) {
	e := New(peopleTable(), Options{})

	e.ActivateSort(0)
	e.ActivateSort(0)
	state, _ := e.ActivateSort(1)

	cols := e.Snapshot().Columns
	if cols[0].Sort != SortNone {
		t.Errorf("column 0 = %v, want none", cols[0].Sort)
	}
	if state != SortAscending || cols[1].Sort != SortAscending {
		t.Errorf("column 1 = %v, want asc", cols[1].Sort)
	}
}

func TestActivateSort_NumericBeforeLexical(t *testing.T) {
	tbl := NewTable([]ColumnSpec{{Name: "N", Sortable: true}}, [][]string{{"10"}, {"9"}, {"2"}})
	e := New(tbl, Options{})
	e.ActivateSort(0)

	if got, want := names(e.Snapshot().Rows), []string{"2", "9", "10"}; !equalStrings(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}
}

func TestActivateSort_Stable(t *testing.T) {
	tbl := NewTable(
		[]ColumnSpec{{Name: "Nome"}, {Name: "Grupo", Sortable: true}},
		[][]string{{"b", "1"}, {"a", "1"}, {"c", "0"}, {"d", "1"}},
	)
	e := New(tbl, Options{})

	e.ActivateSort(1)
	if got, want := names(e.Snapshot().Rows), []string{"c", "b", "a", "d"}; !equalStrings(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}

	e.ActivateSort(1)
	if got, want := names(e.Snapshot().Rows), []string{"b", "a", "d", "c"}; !equalStrings(got, want) {
		t.Errorf("descending = %v, want %v", got, want)
	}
}

func TestActivateSort_PreservesFlags(t *testing.T) {
	e := New(peopleTable(), Options{})
	e.ToggleRow(1, true)
	e.SetQuery("a") // Maria, Ana, João all contain "a"
	e.SetQuery("ria")

	e.ActivateSort(1)

	for _, r := range e.Snapshot().Rows {
		switch r.ID {
		case 0:
			if !r.Visible || r.Selected {
				t.Errorf("Maria = %+v, want visible, unselected", r)
			}
		case 1:
			if r.Visible || !r.Selected {
				t.Errorf("Ana = %+v, want hidden, selected", r)
			}
		}
	}
}

func TestActivateSort_Rejected(t *testing.T) {
	tbl := NewTable([]ColumnSpec{{Name: "Nome", Sortable: true}, {Name: "Obs"}}, [][]string{{"b", "x"}, {"a", "y"}})
	e := New(tbl, Options{})
	e.ActivateSort(0)
	before := names(e.Snapshot().Rows)

	if _, err := e.ActivateSort(1); !errors.Is(err, ErrColumnNotSortable) {
		t.Errorf("unsortable column error = %v, want ErrColumnNotSortable", err)
	}
	if _, err := e.ActivateSort(5); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("out of range error = %v, want ErrColumnOutOfRange", err)
	}
	if _, err := e.ActivateSort(-1); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("negative column error = %v, want ErrColumnOutOfRange", err)
	}

	if got := names(e.Snapshot().Rows); !equalStrings(got, before) {
		t.Errorf("order changed to %v after rejected sort", got)
	}
	if got := e.Snapshot().Columns[0].Sort; got != SortAscending {
		t.Errorf("column 0 = %v after rejected sort, want asc", got)
	}
}

func TestActivateSort_PublishesIndicator(t *testing.T) {
	rec := &recorder{}
	e := New(peopleTable(), Options{})
	e.Attach(rec.bindings(), nil)

	e.ActivateSort(1)

	if len(rec.columns) != 2 || rec.columns[1].Sort != SortAscending {
		t.Errorf("indicator columns = %+v", rec.columns)
	}
	if got, want := names(rec.rows), []string{"Ana", "João", "Maria"}; !equalStrings(got, want) {
		t.Errorf("rendered rows = %v, want %v", got, want)
	}
}

// ============================================================================
// Selection
// ============================================================================

func TestSelectAll_TriState(t *testing.T) {
	tests := []struct {
		name     string
		selected []int
		want     CheckState
	}{
		{"none selected", nil, Unchecked},
		{"two of three", []int{0, 1}, Indeterminate},
		{"all three", []int{0, 1, 2}, Checked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(peopleTable(), Options{})
			for _, id := range tt.selected {
				if _, err := e.ToggleRow(id, true); err != nil {
					t.Fatalf("ToggleRow(%d) error = %v", id, err)
				}
			}
			if got := e.Selection().SelectAll; got != tt.want {
				t.Errorf("SelectAll = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectAll_EmptyTableUnchecked(t *testing.T) {
	e := New(NewTable([]ColumnSpec{{Name: "Nome"}}, nil), Options{})
	sel := e.ToggleAll(true)

	if sel.SelectAll != Unchecked || sel.BulkVisible {
		t.Errorf("empty table selection = %+v, want unchecked, panel hidden", sel)
	}
}

func TestBulkPanel_Count(t *testing.T) {
	rec := &recorder{}
	e := New(peopleTable(), Options{})
	e.Attach(rec.bindings(), nil)

	e.ToggleRow(0, true)
	e.ToggleRow(2, true)

	if !rec.bulkShown || rec.bulkCount != 2 {
		t.Errorf("bulk panel = (%v, %d), want (true, 2)", rec.bulkShown, rec.bulkCount)
	}
	if rec.selectAll != Indeterminate {
		t.Errorf("select-all = %v, want indeterminate", rec.selectAll)
	}

	e.ToggleRow(0, false)
	e.ToggleRow(2, false)
	if rec.bulkShown || rec.bulkCount != 0 {
		t.Errorf("bulk panel = (%v, %d), want hidden", rec.bulkShown, rec.bulkCount)
	}
}

func TestToggleAll_IncludesHiddenRows(t *testing.T) {
	e := New(peopleTable(), Options{})
	e.SetQuery("maria")

	sel := e.ToggleAll(true)
	if sel.Selected != 3 || sel.SelectAll != Checked {
		t.Errorf("selection = %+v, want all 3 checked", sel)
	}

	sel = e.ToggleAll(false)
	if sel.Selected != 0 || sel.SelectAll != Unchecked {
		t.Errorf("selection = %+v, want none", sel)
	}
}

func TestToggleRow_OutOfRange(t *testing.T) {
	e := New(peopleTable(), Options{})

	if _, err := e.ToggleRow(3, true); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("error = %v, want ErrRowOutOfRange", err)
	}
	if got := e.Selection().Selected; got != 0 {
		t.Errorf("Selected = %d after rejected toggle, want 0", got)
	}
}

func TestSelection_ScopedPerEnhancer(t *testing.T) {
	a := New(peopleTable(), Options{})
	b := New(peopleTable(), Options{})

	a.ToggleAll(true)

	if got := b.Selection(); got.Selected != 0 || got.BulkVisible {
		t.Errorf("second table selection = %+v, want untouched", got)
	}
}

func TestNoBindings_NoPanic(t *testing.T) {
	e := New(peopleTable(), Options{})
	e.Attach(Bindings{}, nil)

	e.Refresh()
	e.SetQuery("a")
	e.ActivateSort(0)
	e.ToggleRow(0, true)
	e.ToggleAll(false)
}

// ============================================================================
// Dispatch
// ============================================================================

func TestDispatch(t *testing.T) {
	e := New(peopleTable(), Options{})

	cmds := []Command{
		SetQuery{Text: "a"},
		ActivateSort{Column: 1},
		ToggleRow{Row: 0, Checked: true},
		ToggleAll{Checked: true},
		ToggleRow{Row: 1, Checked: false},
	}
	for _, c := range cmds {
		if err := e.Dispatch(c); err != nil {
			t.Fatalf("Dispatch(%#v) error = %v", c, err)
		}
	}

	v := e.Snapshot()
	if v.Query != "a" {
		t.Errorf("Query = %q, want %q", v.Query, "a")
	}
	if v.Selection.Selected != 2 || v.Selection.SelectAll != Indeterminate {
		t.Errorf("Selection = %+v, want 2 indeterminate", v.Selection)
	}
	if err := e.Dispatch(ActivateSort{Column: 9}); !errors.Is(err, ErrColumnOutOfRange) {
		t.Errorf("Dispatch bad column error = %v", err)
	}
	if err := e.Dispatch(nil); err == nil {
		t.Error("Dispatch(nil) expected error")
	}
}

// ============================================================================
// Bulk actions
// ============================================================================

func TestRunBulkAction_Export(t *testing.T) {
	rec := feedback.NewRecorder()
	e := New(peopleTable(), Options{Actions: []BulkAction{ExportCSV("pessoas")}})
	e.Attach(Bindings{}, rec)

	e.ActivateSort(1) // Ana, João, Maria
	e.ToggleRow(0, true)
	e.ToggleRow(2, true)

	res, err := e.RunBulkAction(context.Background(), ActionExport)
	if err != nil {
		t.Fatalf("RunBulkAction error = %v", err)
	}
	if res.Rows != 2 || res.Attachment == nil {
		t.Fatalf("result = %+v", res)
	}

	want := "Nome,Idade\nJoão,9\nMaria,10\n"
	if got := string(res.Attachment.Data); got != want {
		t.Errorf("csv = %q, want %q", got, want)
	}
	if !strings.HasPrefix(res.Attachment.Filename, "pessoas_") {
		t.Errorf("filename = %q", res.Attachment.Filename)
	}

	toasts := rec.Toasts()
	if len(toasts) != 1 || toasts[0].Severity != feedback.Success {
		t.Errorf("toasts = %+v, want one success", toasts)
	}
}

func TestRunBulkAction_Clear(t *testing.T) {
	e := New(peopleTable(), Options{})
	e.ToggleAll(true)

	res, err := e.RunBulkAction(context.Background(), ActionClear)
	if err != nil {
		t.Fatalf("RunBulkAction error = %v", err)
	}
	if res.Rows != 3 {
		t.Errorf("cleared %d rows, want 3", res.Rows)
	}
	if e.Selection().Selected != 0 {
		t.Errorf("rows still selected after clear")
	}
}

func TestRunBulkAction_Errors(t *testing.T) {
	rec := feedback.NewRecorder()
	failing := BulkAction{
		Name:  "archive",
		Label: "Arquivar",
		Run: func(context.Context, []Column, []Row) (ActionResult, error) {
			return ActionResult{}, errors.New("boom")
		},
	}
	e := New(peopleTable(), Options{Actions: []BulkAction{failing}})
	e.Attach(Bindings{}, rec)

	if _, err := e.RunBulkAction(context.Background(), "nope"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action error = %v", err)
	}
	if _, err := e.RunBulkAction(context.Background(), "archive"); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("empty selection error = %v", err)
	}

	e.ToggleRow(1, true)
	if _, err := e.RunBulkAction(context.Background(), "archive"); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("failing action error = %v", err)
	}

	toasts := rec.Toasts()
	if len(toasts) != 2 || toasts[0].Severity != feedback.Warning || toasts[1].Severity != feedback.Error {
		t.Errorf("toasts = %+v, want warning then error", toasts)
	}
}
