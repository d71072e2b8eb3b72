package table

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/TableUI/internal/feedback"
	"golang.org/x/text/language"
)

// Options configures an Enhancer.
type Options struct {
	// Locale selects the collation used for non-numeric sorting.
	// Zero value means DefaultLocale.
	Locale language.Tag

	// Actions are offered in the bulk-actions panel in addition to
	// the built-in ActionClear.
	Actions []BulkAction
}

// Enhancer attaches search, sort and selection behavior to a Table.
//
// Commands run to completion one at a time. An Enhancer is not safe for
// concurrent use; callers serialize access.
type Enhancer struct {
	table   *Table
	cmp     *Comparator
	query   string
	actions []BulkAction

	bind Bindings
	fb   feedback.Notifier
}

// New enhances t. The table is not copied; the Enhancer becomes its only writer.
func New(t *Table, opts Options) *Enhancer {
	locale := opts.Locale
	if locale == language.Und {
		locale = DefaultLocale
	}

	return &Enhancer{
		table:   t,
		cmp:     NewComparator(locale),
		actions: append([]BulkAction(nil), opts.Actions...),
		fb:      feedback.Nop{},
	}
}

// Attach sets the page elements and feedback sink for subsequent commands.
// A nil Notifier discards feedback.
func (e *Enhancer) Attach(b Bindings, fb feedback.Notifier) {
	if fb == nil {
		fb = feedback.Nop{}
	}
	e.bind = b
	e.fb = fb
}

// Detach drops the current bindings and feedback sink.
func (e *Enhancer) Detach() {
	e.Attach(Bindings{}, nil)
}

// Refresh publishes the full current state to every bound element.
func (e *Enhancer) Refresh() {
	e.bind.publishQuery(e.query)
	e.bind.publishSort(e.table.Columns())
	e.bind.publishRows(e.table.Rows())
	e.bind.publishSelection(e.table.selection())
	e.bind.publishStats(e.table.stats())
}

// Query returns the active search query.
func (e *Enhancer) Query() string {
	return e.query
}

// SetQuery filters rows by query and publishes the resulting stats.
func (e *Enhancer) SetQuery(query string) Stats {
	e.query = query
	e.table.filter(query)

	stats := e.table.stats()
	e.bind.publishQuery(query)
	e.bind.publishRows(e.table.Rows())
	e.bind.publishStats(stats)
	return stats
}

// ActivateSort advances column col through none → asc → desc → asc and sorts
// the rows accordingly. Every other column is reset to SortNone.
func (e *Enhancer) ActivateSort(col int) (SortState, error) {
	if col < 0 || col >= len(e.table.columns) {
		return SortNone, fmt.Errorf("sort column %d: %w", col, ErrColumnOutOfRange)
	}
	if !e.table.columns[col].Sortable {
		return e.table.columns[col].Sort, fmt.Errorf("sort column %d: %w", col, ErrColumnNotSortable)
	}

	dir := e.table.activate(col)
	e.table.sortBy(col, dir, e.cmp)

	e.bind.publishSort(e.table.Columns())
	e.bind.publishRows(e.table.Rows())
	return dir, nil
}

// ToggleRow sets the selected flag of row id.
func (e *Enhancer) ToggleRow(id int, checked bool) (SelectionState, error) {
	if id < 0 || id >= len(e.table.rows) {
		return e.table.selection(), fmt.Errorf("toggle row %d: %w", id, ErrRowOutOfRange)
	}

	e.table.rows[id].Selected = checked

	sel := e.table.selection()
	e.bind.publishSelection(sel)
	return sel, nil
}

// ToggleAll sets the selected flag of every row, including hidden ones.
func (e *Enhancer) ToggleAll(checked bool) SelectionState {
	e.table.setAll(checked)

	sel := e.table.selection()
	e.bind.publishRows(e.table.Rows())
	e.bind.publishSelection(sel)
	return sel
}

// Selection returns the current derived selection state.
func (e *Enhancer) Selection() SelectionState {
	return e.table.selection()
}

// Actions returns the registered bulk actions, the built-in clear first.
func (e *Enhancer) Actions() []BulkAction {
	out := make([]BulkAction, 0, len(e.actions)+1)
	out = append(out, BulkAction{Name: ActionClear, Label: "Limpar seleção"})
	return append(out, e.actions...)
}

// RunBulkAction runs the named action over the selected rows and reports the
// outcome through the attached Notifier.
func (e *Enhancer) RunBulkAction(ctx context.Context, name string) (ActionResult, error) {
	if name == ActionClear {
		n := e.table.selection().Selected
		e.ToggleAll(false)
		return ActionResult{Action: ActionClear, Rows: n, Message: "Seleção limpa"}, nil
	}

	var action *BulkAction
	for i := range e.actions {
		if e.actions[i].Name == name {
			action = &e.actions[i]
			break
		}
	}
	if action == nil || action.Run == nil {
		return ActionResult{}, fmt.Errorf("bulk action %q: %w", name, ErrUnknownAction)
	}

	rows := e.table.selected()
	if len(rows) == 0 {
		e.fb.Notify("Nenhuma linha selecionada", feedback.Warning, 0)
		return ActionResult{}, fmt.Errorf("bulk action %q: %w", name, ErrNothingSelected)
	}

	e.fb.SetLoading(true, action.Label)
	result, err := action.Run(ctx, e.table.Columns(), rows)
	e.fb.SetLoading(false, "")

	if err != nil {
		slog.Warn("bulk action failed", "action", name, "rows", len(rows), "error", err)
		e.fb.Notify(fmt.Sprintf("Falha ao executar %q", action.Label), feedback.Error, 0)
		return ActionResult{}, fmt.Errorf("bulk action %q: %w", name, err)
	}

	if result.Action == "" {
		result.Action = name
	}
	if result.Message != "" {
		e.fb.Notify(result.Message, feedback.Success, 0)
	}
	return result, nil
}

// Snapshot returns a copy of the current state for rendering.
func (e *Enhancer) Snapshot() View {
	return View{
		Query:     e.query,
		Columns:   e.table.Columns(),
		Rows:      e.table.Rows(),
		Selection: e.table.selection(),
		Stats:     e.table.stats(),
		Actions:   e.Actions(),
	}
}

// View is an immutable snapshot of an enhanced table.
type View struct {
	Query     string         `json:"query"`
	Columns   []Column       `json:"columns"`
	Rows      []Row          `json:"rows"`
	Selection SelectionState `json:"selection"`
	Stats     Stats          `json:"stats"`
	Actions   []BulkAction   `json:"-"`
}
