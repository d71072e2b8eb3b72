package table

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLocale is the collation locale used when none is configured.
var DefaultLocale = language.BrazilianPortuguese

// Comparator orders cell text. Values that both read as numbers compare
// numerically; anything else compares with the locale's collation rules.
//
// A Comparator is not safe for concurrent use.
type Comparator struct {
	coll *collate.Collator
}

// NewComparator returns a Comparator collating for tag.
func NewComparator(tag language.Tag) *Comparator {
	return &Comparator{coll: collate.New(tag)}
}

// Compare returns -1, 0 or +1 ordering a before, equal to or after b
// in ascending order.
func (c *Comparator) Compare(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	an, aok := parseNumeric(a)
	bn, bok := parseNumeric(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	return c.coll.CompareString(a, b)
}

// parseNumeric keeps only digits, '.' and '-' from s and reads the longest
// leading float literal from what remains: "R$ 1.500" reads as 1.5,
// "1.2.3" as 1.2, "10-20" as 10. Returns false when no literal leads.
func parseNumeric(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	end := 0
	if end < len(cleaned) && cleaned[end] == '-' {
		end++
	}
	digits := 0
	for end < len(cleaned) && isDigit(cleaned[end]) {
		end++
		digits++
	}
	if end < len(cleaned) && cleaned[end] == '.' {
		frac := end + 1
		for frac < len(cleaned) && isDigit(cleaned[frac]) {
			frac++
			digits++
		}
		if digits > 0 {
			end = frac
		}
	}
	if digits == 0 {
		return 0, false
	}

	// Out of range values come back as ±Inf and still order correctly.
	f, err := strconv.ParseFloat(cleaned[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// sortBy stably reorders the display order by column col in direction dir.
// Rows comparing equal keep their relative order.
func (t *Table) sortBy(col int, dir SortState, cmp *Comparator) {
	keys := make([]string, len(t.rows))
	for i, r := range t.rows {
		keys[i] = r.Cell(col)
	}

	sort.SliceStable(t.order, func(i, j int) bool {
		c := cmp.Compare(keys[t.order[i]], keys[t.order[j]])
		if dir == SortDescending {
			return c > 0
		}
		return c < 0
	})
}

// activate moves column col through its sort cycle and resets every other
// column to SortNone. Returns the column's new state.
func (t *Table) activate(col int) SortState {
	next := t.columns[col].Sort.next()
	for i := range t.columns {
		t.columns[i].Sort = SortNone
	}
	t.columns[col].Sort = next
	return next
}
