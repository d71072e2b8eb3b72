package web

// This file contains shared request helpers and the small page-wide
// endpoints: theme, keyboard shortcuts and health.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/logging"
)

const (
	themeCookie   = "theme"
	themeLight    = "light"
	themeDark     = "dark"
	themeLifetime = 365 * 24 * time.Hour
)

// parseChecked reads a checkbox value. htmx sends the value only when the
// box is checked.
func parseChecked(r *http.Request) bool {
	switch r.FormValue("checked") {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

// parseIndex parses a non-negative row or column index from the URL.
// Malformed values are reported as notFound so they map to the same status
// as an index past the end.
func parseIndex(raw string, notFound error) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("index %q: %w", raw, notFound)
	}
	return i, nil
}

// themeFromRequest returns the theme stored in the cookie, light by default.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err == nil && c.Value == themeDark {
		return themeDark
	}
	return themeLight
}

// handleTheme switches between light and dark. An explicit theme form value
// wins over toggling. The page applies it from the "theme" client event.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.FormValue("theme")
	if theme != themeLight && theme != themeDark {
		theme = themeDark
		if themeFromRequest(r) == themeDark {
			theme = themeLight
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    theme,
		Path:     "/",
		MaxAge:   int(themeLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	trigger, err := json.Marshal(map[string]string{"theme": theme})
	if err == nil {
		w.Header().Set("HX-Trigger", string(trigger))
	}

	if isHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// Shortcut is a keyboard shortcut handled by the page script.
type Shortcut struct {
	Key         string `json:"key"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// shortcuts is the keyboard map served to the page script.
var shortcuts = []Shortcut{
	{Key: "/", Action: "search", Description: "Focar a busca"},
	{Key: "Escape", Action: "clear-search", Description: "Limpar a busca"},
	{Key: "a", Action: "select-all", Description: "Selecionar ou desmarcar todas as linhas"},
	{Key: "t", Action: "theme", Description: "Alternar tema claro/escuro"},
	{Key: "?", Action: "help", Description: "Mostrar atalhos"},
}

// handleShortcuts returns the keyboard shortcuts.
func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shortcuts)
}

// healthStatus is the body of GET /healthz.
type healthStatus struct {
	Status        string `json:"status"`
	Database      bool   `json:"database"`
	Tables        int    `json:"tables"`
	Sessions      int    `json:"sessions"`
	PendingDrafts int    `json:"pending_drafts"`

	Loads core.LoadLimiterStatus `json:"loads"`
}

// handleHealth reports liveness and a few counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status:        "ok",
		Database:      s.service.HasDatabase(),
		Tables:        core.TableCount(),
		Sessions:      s.service.SessionCount(),
		PendingDrafts: s.service.Drafts().Pending(),
		Loads:         s.service.LoadStatus(),
	}
	logging.FromContext(r.Context()).Debug("health check", "sessions", status.Sessions)
	writeJSON(w, http.StatusOK, status)
}
