package web

import (
	"net/http"

	"github.com/JonMunkholm/TableUI/internal/feedback"
	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/logging"
	"github.com/JonMunkholm/TableUI/internal/web/views"
	"github.com/go-chi/chi/v5"
)

// formFromURL resolves the form named in the URL, writing a 404 if unknown.
func (s *Server) formFromURL(w http.ResponseWriter, r *http.Request) (forms.Form, bool) {
	form, err := forms.Lookup(chi.URLParam(r, "formID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return forms.Form{}, false
	}
	return form, true
}

// formValues reads the submitted values of the form's own fields.
// Unknown keys are dropped so drafts only hold declared fields.
func formValues(r *http.Request, form forms.Form) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		if _, ok := r.PostForm[f.Name]; ok {
			values[f.Name] = r.PostForm.Get(f.Name)
		}
	}
	return values, nil
}

// handleGetDraft returns the latest draft of a form.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	form, ok := s.formFromURL(w, r)
	if !ok {
		return
	}

	draft, err := s.service.Drafts().Load(r.Context(), form.ID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// handleSaveDraft records the current field values. The write happens once
// the user stops typing for the auto-save delay. htmx callers get the
// auto-save indicator state in HX-Trigger.
func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	form, ok := s.formFromURL(w, r)
	if !ok {
		return
	}

	values, err := formValues(r, form)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.service.Drafts().Touch(form.ID, values); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		rec := feedback.NewRecorder()
		rec.SetDraftStatus(feedback.DraftSaved, "Salvo automaticamente")
		if err := rec.WriteHeader(w.Header()); err != nil {
			logging.FromContext(r.Context()).Error("write feedback header", "error", err)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

// handleDiscardDraft drops the pending and stored draft of a form.
func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	form, ok := s.formFromURL(w, r)
	if !ok {
		return
	}

	if err := s.service.Drafts().Discard(r.Context(), form.ID); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	logging.FromContext(r.Context()).Info("draft discarded", "form_id", form.ID)

	if isHTMX(r) {
		// Reload so the inputs are cleared.
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

// handleValidate validates the submitted values without saving them.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	form, ok := s.formFromURL(w, r)
	if !ok {
		return
	}

	values, err := formValues(r, form)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	res := form.Validate(values)

	if !isHTMX(r) {
		status := http.StatusOK
		if !res.Valid {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, res)
		return
	}

	rec := feedback.NewRecorder()
	if res.Valid {
		rec.Notify("Formulário válido", feedback.Success, 0)
	} else {
		rec.Notify("Corrija os campos destacados", feedback.Warning, 0)
	}
	if err := rec.WriteHeader(w.Header()); err != nil {
		logging.FromContext(r.Context()).Error("write feedback header", "error", err)
	}
	writeHTML(w, r, http.StatusOK, views.FieldErrors(form, res))
}
