package table

import "strings"

// Stats summarizes the table after a command.
type Stats struct {
	Total    int `json:"total"`
	Visible  int `json:"visible"`
	Selected int `json:"selected"`
}

// filter sets Visible on every row. A row matches when the lowercase
// concatenation of its cells contains the lowercase query; the empty query
// matches every row.
func (t *Table) filter(query string) {
	q := strings.ToLower(query)
	for i := range t.rows {
		t.rows[i].Visible = q == "" || strings.Contains(rowText(t.rows[i]), q)
	}
}

// rowText is the searchable text of a row: its cells joined with no separator.
func rowText(r Row) string {
	return strings.ToLower(strings.Join(r.Cells, ""))
}

func (t *Table) stats() Stats {
	s := Stats{Total: len(t.rows)}
	for _, r := range t.rows {
		if r.Visible {
			s.Visible++
		}
		if r.Selected {
			s.Selected++
		}
	}
	return s
}
