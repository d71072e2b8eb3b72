package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"
)

// Built-in bulk action names.
const (
	ActionClear  = "clear"
	ActionExport = "export"
)

// Attachment is a file produced by a bulk action.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ActionResult is what a bulk action reports back to the page.
type ActionResult struct {
	Action     string      `json:"action"`
	Rows       int         `json:"rows"`
	Message    string      `json:"message,omitempty"`
	Attachment *Attachment `json:"-"`
}

// BulkActionFunc runs over the selected rows, given in display order.
type BulkActionFunc func(ctx context.Context, columns []Column, rows []Row) (ActionResult, error)

// BulkAction is a named action offered in the bulk-actions panel.
type BulkAction struct {
	Name  string
	Label string
	Run   BulkActionFunc

	// Download marks actions whose result carries an Attachment, so the
	// page submits them as a regular form post instead of an htmx request.
	Download bool
}

// ExportCSV returns a bulk action that writes the selected rows as CSV with
// a header line. The file is named <prefix>_<timestamp>.csv.
func ExportCSV(prefix string) BulkAction {
	return BulkAction{
		Name:     ActionExport,
		Label:    "Exportar CSV",
		Download: true,
		Run: func(ctx context.Context, columns []Column, rows []Row) (ActionResult, error) {
			var buf bytes.Buffer
			w := csv.NewWriter(&buf)

			header := make([]string, len(columns))
			for i, c := range columns {
				header[i] = c.Name
			}
			if err := w.Write(header); err != nil {
				return ActionResult{}, fmt.Errorf("write header: %w", err)
			}

			for _, r := range rows {
				if err := ctx.Err(); err != nil {
					return ActionResult{}, err
				}
				record := make([]string, len(columns))
				for i := range columns {
					record[i] = r.Cell(i)
				}
				if err := w.Write(record); err != nil {
					return ActionResult{}, fmt.Errorf("write row %d: %w", r.ID, err)
				}
			}

			w.Flush()
			if err := w.Error(); err != nil {
				return ActionResult{}, fmt.Errorf("flush csv: %w", err)
			}

			return ActionResult{
				Action:  ActionExport,
				Rows:    len(rows),
				Message: fmt.Sprintf("%d linha(s) exportada(s)", len(rows)),
				Attachment: &Attachment{
					Filename:    fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102_150405")),
					ContentType: "text/csv",
					Data:        buf.Bytes(),
				},
			}, nil
		},
	}
}
