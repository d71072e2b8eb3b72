package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/TableUI/internal/autosave"
	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/logging"
	"github.com/JonMunkholm/TableUI/internal/web/views"
	"github.com/go-chi/chi/v5"
)

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var groups []views.DashboardGroup
	for _, groupName := range core.Groups() {
		defs := core.ByGroup(groupName)
		tables := make([]views.DashboardTable, len(defs))
		for i, def := range defs {
			tables[i] = views.DashboardTable{
				Info:      def.Info,
				Available: s.service.Available(def.Info.Key),
			}
		}
		groups = append(groups, views.DashboardGroup{Name: groupName, Tables: tables})
	}

	page := views.Layout("Tabelas", themeFromRequest(r), views.Dashboard(groups, forms.IDs()))
	writeHTML(w, r, http.StatusOK, page)
}

// handleTablePage opens a new session over the table and renders it.
func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "tableKey")

	sess, err := s.service.OpenSession(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := logging.ContextWithSession(r.Context(), sess.ID)
	logging.FromContext(ctx).Info("table opened", "table", tableKey)

	page := views.Layout(sess.Info.Label, themeFromRequest(r), views.TablePage(sess.ID, sess.Info, sess.Snapshot()))
	writeHTML(w, r, http.StatusOK, page)
}

// handleFormPage renders a form pre-filled from its saved draft.
func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	form, err := forms.Lookup(chi.URLParam(r, "formID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var values map[string]string
	draft, err := s.service.Drafts().Load(r.Context(), form.ID)
	switch {
	case err == nil:
		values = draft.Fields
	case errors.Is(err, autosave.ErrDraftNotFound):
	default:
		// Render the empty form rather than fail the page.
		slog.WarnContext(r.Context(), "load draft failed", "form_id", form.ID, "error", err)
	}

	page := views.Layout("Formulário "+form.ID, themeFromRequest(r), views.FormPage(form, values))
	writeHTML(w, r, http.StatusOK, page)
}

// tableListing is one entry of GET /api/tables.
type tableListing struct {
	core.TableInfo
	Available bool `json:"available"`
}

// handleListTables returns all tables organized by group.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]tableListing)
	for group, infos := range s.service.ListTablesByGroup() {
		for _, info := range infos {
			out[group] = append(out[group], tableListing{
				TableInfo: info,
				Available: s.service.Available(info.Key),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}
