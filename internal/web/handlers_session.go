package web

// handlers_session.go serves the commands of an open table session.
//
// Every command runs under the session lock with a fresh set of bindings.
// htmx requests get the touched page parts back as out-of-band swaps and
// their feedback in the HX-Trigger header. Other clients get a JSON
// commandResponse with the resulting view.

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/feedback"
	"github.com/JonMunkholm/TableUI/internal/logging"
	"github.com/JonMunkholm/TableUI/internal/table"
	"github.com/go-chi/chi/v5"
)

// commandResponse is the JSON body of a session command.
type commandResponse struct {
	Result any              `json:"result,omitempty"`
	View   table.View       `json:"view"`
	Toasts []feedback.Toast `json:"toasts,omitempty"`
}

// commandOutcome is what runCommand leaves for the handler to write.
type commandOutcome struct {
	sess   *core.Session
	frags  *fragments
	rec    *feedback.Recorder
	result any
	view   table.View
}

// runCommand resolves the session in the URL and runs fn against its
// Enhancer. On failure the error response is already written and ok is false.
func (s *Server) runCommand(w http.ResponseWriter, r *http.Request, reflectQuery bool, fn func(e *table.Enhancer) (any, error)) (out commandOutcome, ok bool) {
	sess, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return out, false
	}

	r = r.WithContext(logging.ContextWithSession(r.Context(), sess.ID))
	htmx := isHTMX(r)

	out = commandOutcome{
		sess:  sess,
		frags: newFragments(sess),
		rec:   feedback.NewRecorder(),
	}

	err = sess.Do(out.frags.bindings(reflectQuery), out.rec, func(e *table.Enhancer) error {
		out.frags.actions = e.Actions()
		res, err := fn(e)
		if err != nil {
			return err
		}
		out.result = res
		if !htmx {
			out.view = e.Snapshot()
		}
		return nil
	})
	if err != nil {
		s.respondErrorWith(w, r, err, statusFor(err), out.rec)
		return out, false
	}
	return out, true
}

// writeCommand writes a successful command outcome.
func (s *Server) writeCommand(w http.ResponseWriter, r *http.Request, out commandOutcome) {
	if isHTMX(r) {
		if err := out.rec.WriteHeader(w.Header()); err != nil {
			logging.FromContext(r.Context()).Error("write feedback header", "error", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if out.frags.Len() == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := out.frags.Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render fragments", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{
		Result: out.result,
		View:   out.view,
		Toasts: out.rec.Toasts(),
	})
}

// handleSearch applies the search query. The search box itself is not
// swapped so the input keeps focus.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("q")

	out, ok := s.runCommand(w, r, false, func(e *table.Enhancer) (any, error) {
		return e.SetQuery(query), nil
	})
	if ok {
		s.writeCommand(w, r, out)
	}
}

// sortResult is the JSON result of a sort command.
type sortResult struct {
	Column int             `json:"column"`
	Sort   table.SortState `json:"sort"`
}

// handleSort advances the sort cycle of one column.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	col, err := parseIndex(chi.URLParam(r, "col"), table.ErrColumnOutOfRange)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	out, ok := s.runCommand(w, r, false, func(e *table.Enhancer) (any, error) {
		dir, err := e.ActivateSort(col)
		if err != nil {
			return nil, err
		}
		return sortResult{Column: col, Sort: dir}, nil
	})
	if ok {
		s.writeCommand(w, r, out)
	}
}

// handleToggleRow checks or unchecks one row.
func (s *Server) handleToggleRow(w http.ResponseWriter, r *http.Request) {
	row, err := parseIndex(chi.URLParam(r, "row"), table.ErrRowOutOfRange)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	checked := parseChecked(r)

	out, ok := s.runCommand(w, r, false, func(e *table.Enhancer) (any, error) {
		return e.ToggleRow(row, checked)
	})
	if ok {
		s.writeCommand(w, r, out)
	}
}

// handleToggleAll checks or unchecks every row, hidden ones included.
func (s *Server) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	checked := parseChecked(r)

	out, ok := s.runCommand(w, r, false, func(e *table.Enhancer) (any, error) {
		state := e.ToggleAll(checked)
		return state, nil
	})
	if ok {
		s.writeCommand(w, r, out)
	}
}

// handleBulk runs a bulk action over the selected rows. Actions that
// produce a file are answered with the file as a download.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")

	out, ok := s.runCommand(w, r, false, func(e *table.Enhancer) (any, error) {
		return e.RunBulkAction(r.Context(), name)
	})
	if !ok {
		return
	}

	res, _ := out.result.(table.ActionResult)
	logging.FromContext(logging.ContextWithSession(r.Context(), out.sess.ID)).Info("bulk action",
		"action", res.Action,
		"rows", res.Rows,
	)

	if a := res.Attachment; a != nil {
		w.Header().Set("Content-Type", a.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
		if _, err := w.Write(a.Data); err != nil {
			logging.FromContext(r.Context()).Error("write attachment", "error", err)
		}
		return
	}

	s.writeCommand(w, r, out)
}

// handleSnapshot returns the current view of a session as JSON.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID    string         `json:"id"`
		Table core.TableInfo `json:"table"`
		View  table.View     `json:"view"`
	}{sess.ID, sess.Info, sess.Snapshot()})
}

// handleCloseSession drops a session, usually when the page is left.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.service.CloseSession(id) {
		err := fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
		s.respondError(w, r, err, statusFor(err))
		return
	}
	logging.FromContext(logging.ContextWithSession(r.Context(), id)).Debug("session closed")
	w.WriteHeader(http.StatusNoContent)
}
