package core

// loaders.go builds LoadFuncs for the two dataset sources:
//
//   - CSVLoader: an in-memory CSV document (usually go:embed), decoded as
//     UTF-8 with an optional BOM. Invalid bytes become U+FFFD and every cell
//     goes through cleanCell.
//   - QueryLoader: a PostgreSQL query whose result columns are rendered to
//     display strings by formatCell.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newCSVReader wraps r with BOM stripping and UTF-8 sanitization.
func newCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	return cr
}

// CSVLoader returns a LoadFunc that parses data. When hasHeader is true the
// first record is dropped. Every record must have the same number of fields.
func CSVLoader(data []byte, hasHeader bool) LoadFunc {
	return func(ctx context.Context, _ DBTX) ([][]string, error) {
		return readCSV(ctx, bytes.NewReader(data), hasHeader)
	}
}

func readCSV(ctx context.Context, r io.Reader, hasHeader bool) ([][]string, error) {
	cr := newCSVReader(r)

	var body [][]string
	first := true
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if first {
			first = false
			if hasHeader {
				continue
			}
		}
		for i, cell := range record {
			record[i] = cleanCell(cell)
		}
		body = append(body, record)
	}

	return body, nil
}

// cleanCell strips spreadsheet export artifacts: surrounding whitespace,
// a formula wrapper (="..." or a bare leading =) and stray quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// QueryLoader returns a LoadFunc that runs query and renders every value
// with formatCell. It fails with ErrNoDatabase when db is nil.
func QueryLoader(query string, args ...any) LoadFunc {
	return func(ctx context.Context, db DBTX) ([][]string, error) {
		if db == nil {
			return nil, ErrNoDatabase
		}

		rows, err := db.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query rows: %w", err)
		}
		defer rows.Close()

		var body [][]string
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return nil, fmt.Errorf("read row values: %w", err)
			}

			record := make([]string, len(values))
			for i, v := range values {
				record[i] = formatCell(v)
			}
			body = append(body, record)
		}

		return body, rows.Err()
	}
}

// formatCell renders a database value as display text.
// Numbers keep a '.' decimal separator so the sort comparator reads them.
func formatCell(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return formatFloat(f.Float64)

	case pgtype.Date:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02")

	case pgtype.Timestamptz:
		if !val.Valid {
			return ""
		}
		return val.Time.Format("2006-01-02 15:04")

	case pgtype.Text:
		if !val.Valid {
			return ""
		}
		return val.String

	case pgtype.Bool:
		if !val.Valid {
			return ""
		}
		return formatBool(val.Bool)

	case pgtype.UUID:
		if !val.Valid {
			return ""
		}
		return uuid.UUID(val.Bytes).String()

	case [16]byte:
		return uuid.UUID(val).String()

	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04")

	case bool:
		return formatBool(val)

	case float64:
		return formatFloat(val)

	case float32:
		return formatFloat(float64(val))

	case int64:
		return strconv.FormatInt(val, 10)

	case int32:
		return strconv.FormatInt(int64(val), 10)

	case int16:
		return strconv.FormatInt(int64(val), 10)

	case int:
		return strconv.Itoa(val)

	case []byte:
		return string(val)

	case string:
		return val

	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

func formatBool(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
