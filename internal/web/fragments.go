package web

import (
	"context"
	"io"

	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/table"
	"github.com/JonMunkholm/TableUI/internal/web/views"
	"github.com/a-h/templ"
)

// fragments collects the page parts an Enhancer updated during one request
// and renders them as out-of-band swaps. Each part is kept once; a later
// update to the same part replaces the earlier one.
type fragments struct {
	sessionID string
	columns   int
	actions   []table.BulkAction

	order []string
	parts map[string]templ.Component
}

func newFragments(sess *core.Session) *fragments {
	return &fragments{
		sessionID: sess.ID,
		columns:   len(sess.Info.Columns),
		parts:     make(map[string]templ.Component),
	}
}

// bindings returns Bindings writing into f. The search box is left out unless
// reflectQuery is set so the input being typed into is not replaced.
func (f *fragments) bindings(reflectQuery bool) table.Bindings {
	b := table.Bindings{
		SelectAll: f,
		Bulk:      f,
		Stats:     f,
		Sort:      f,
		Body:      f,
	}
	if reflectQuery {
		b.Search = f
	}
	return b
}

func (f *fragments) set(part string, c templ.Component) {
	if _, ok := f.parts[part]; !ok {
		f.order = append(f.order, part)
	}
	f.parts[part] = c
}

func (f *fragments) SetQuery(query string) {
	f.set("search", views.SearchBox(f.sessionID, query, true))
}

func (f *fragments) SetState(state table.CheckState) {
	f.set("select-all", views.SelectAll(f.sessionID, state, true))
}

func (f *fragments) Update(visible bool, count int) {
	f.set("bulk", views.BulkPanel(f.sessionID, visible, count, f.actions, true))
}

func (f *fragments) Publish(stats table.Stats) {
	f.set("stats", views.Stats(f.sessionID, stats, true))
}

func (f *fragments) SetSort(columns []table.Column) {
	f.set("sort", views.SortHeaders(f.sessionID, columns, true))
}

func (f *fragments) RenderRows(rows []table.Row) {
	f.set("body", views.TableBody(f.sessionID, f.columns, rows, true))
}

// Len returns the number of collected parts.
func (f *fragments) Len() int {
	return len(f.order)
}

// Render writes the collected parts in the order they were first updated.
func (f *fragments) Render(ctx context.Context, w io.Writer) error {
	for _, part := range f.order {
		if err := f.parts[part].Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}
