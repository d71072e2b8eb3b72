package table

// SearchBox reflects the active query back into the search input.
type SearchBox interface {
	SetQuery(query string)
}

// SelectAllControl is the header checkbox.
type SelectAllControl interface {
	SetState(state CheckState)
}

// BulkPanel is the bulk-actions panel and its selected-count label.
type BulkPanel interface {
	Update(visible bool, count int)
}

// StatsDisplay shows visible/total row counts.
type StatsDisplay interface {
	Publish(stats Stats)
}

// SortIndicator receives the sort marker of every sortable column after a
// sort is activated.
type SortIndicator interface {
	SetSort(columns []Column)
}

// BodyRenderer re-renders the table body after rows are reordered or hidden.
type BodyRenderer interface {
	RenderRows(rows []Row)
}

// Bindings are the optional page elements attached to an Enhancer.
// A nil field means the element is absent and updates to it are skipped.
type Bindings struct {
	Search    SearchBox
	SelectAll SelectAllControl
	Bulk      BulkPanel
	Stats     StatsDisplay
	Sort      SortIndicator
	Body      BodyRenderer
}

func (b Bindings) publishSelection(s SelectionState) {
	if b.SelectAll != nil {
		b.SelectAll.SetState(s.SelectAll)
	}
	if b.Bulk != nil {
		b.Bulk.Update(s.BulkVisible, s.Selected)
	}
}

func (b Bindings) publishStats(s Stats) {
	if b.Stats != nil {
		b.Stats.Publish(s)
	}
}

func (b Bindings) publishQuery(q string) {
	if b.Search != nil {
		b.Search.SetQuery(q)
	}
}

func (b Bindings) publishSort(cols []Column) {
	if b.Sort != nil {
		b.Sort.SetSort(cols)
	}
}

func (b Bindings) publishRows(rows []Row) {
	if b.Body != nil {
		b.Body.RenderRows(rows)
	}
}
