// Package views renders pages and htmx fragments as templ components.
//
// Fragments that are swapped out-of-band carry element IDs derived from the
// session ID (see ID), so two tables open in different tabs never update
// each other.
//
// Components live in the .templ files; run `templ generate` after editing
// them.
package views

import (
	"strconv"

	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/table"
)

// ID returns the DOM id of part within the page of sessionID.
func ID(sessionID, part string) string {
	return "t-" + sessionID + "-" + part
}

func sessionURL(sessionID, suffix string) string {
	return "/api/session/" + sessionID + suffix
}

func columnID(sessionID string, index int) string {
	return ID(sessionID, "col-"+strconv.Itoa(index))
}

func themeName(theme string) string {
	if theme == "dark" {
		return theme
	}
	return "light"
}

var sortGlyphs = map[table.SortState]string{
	table.SortNone:       "⇅",
	table.SortAscending:  "▲",
	table.SortDescending: "▼",
}

var ariaSort = map[table.SortState]string{
	table.SortNone:       "none",
	table.SortAscending:  "ascending",
	table.SortDescending: "descending",
}

func statsText(s table.Stats) string {
	if s.Visible == s.Total {
		return strconv.Itoa(s.Total) + " registro(s)"
	}
	return "Mostrando " + strconv.Itoa(s.Visible) + " de " + strconv.Itoa(s.Total) + " registro(s)"
}

func anyVisible(rows []table.Row) bool {
	for _, r := range rows {
		if r.Visible {
			return true
		}
	}
	return false
}

func fieldID(formID, field string) string {
	return "f-" + formID + "-" + field
}

func errorID(formID, field string) string {
	return "f-" + formID + "-" + field + "-error"
}

func fieldLabel(f forms.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func inputType(t forms.FieldType) string {
	if t == forms.FieldEmail {
		return "email"
	}
	return "text"
}
