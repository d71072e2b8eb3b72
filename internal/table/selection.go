package table

// CheckState is the tri-state of the header select-all control.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Indeterminate
)

func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

func (c CheckState) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SelectionState is derived from the row flags on demand; it is never stored.
type SelectionState struct {
	Selected    int        `json:"selected"`
	Total       int        `json:"total"`
	SelectAll   CheckState `json:"selectAll"`
	BulkVisible bool       `json:"bulkVisible"`
}

// deriveSelection computes the select-all state and bulk panel from counts.
func deriveSelection(selected, total int) SelectionState {
	s := SelectionState{
		Selected:    selected,
		Total:       total,
		BulkVisible: selected > 0,
	}
	switch {
	case total > 0 && selected == total:
		s.SelectAll = Checked
	case selected > 0 && selected < total:
		s.SelectAll = Indeterminate
	default:
		s.SelectAll = Unchecked
	}
	return s
}

func (t *Table) selection() SelectionState {
	n := 0
	for _, r := range t.rows {
		if r.Selected {
			n++
		}
	}
	return deriveSelection(n, len(t.rows))
}

// setAll flags every row, hidden or not.
func (t *Table) setAll(checked bool) {
	for i := range t.rows {
		t.rows[i].Selected = checked
	}
}

// selected returns the selected rows in display order.
func (t *Table) selected() []Row {
	var out []Row
	for _, id := range t.order {
		if t.rows[id].Selected {
			out = append(out, t.rows[id])
		}
	}
	return out
}
