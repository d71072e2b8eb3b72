package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with the request and session IDs, mapped to a
// user-facing message by core.MapError, and returned in the format the
// client expects:
//   - htmx requests: an HX-Trigger toast plus an alert fragment (htmx does not
//     swap error responses, so the toast is what the user sees)
//   - JSON clients and /api routes: ErrorResponse
//   - browsers: a full error page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/TableUI/internal/autosave"
	"github.com/JonMunkholm/TableUI/internal/core"
	"github.com/JonMunkholm/TableUI/internal/feedback"
	"github.com/JonMunkholm/TableUI/internal/forms"
	"github.com/JonMunkholm/TableUI/internal/logging"
	"github.com/JonMunkholm/TableUI/internal/table"
	"github.com/JonMunkholm/TableUI/internal/web/views"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errRateLimited = errors.New("rate limit exceeded")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTableNotFound),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, forms.ErrFormNotFound),
		errors.Is(err, autosave.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, table.ErrColumnOutOfRange),
		errors.Is(err, table.ErrRowOutOfRange),
		errors.Is(err, table.ErrUnknownAction),
		errors.Is(err, autosave.ErrInvalidFormID):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrColumnNotSortable),
		errors.Is(err, table.ErrNothingSelected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrNoDatabase),
		errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-facing error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	s.respondErrorWith(w, r, err, statusCode, nil)
}

// respondErrorWith is respondError reusing feedback already recorded for the
// request. When rec holds toasts, no extra error toast is added.
func (s *Server) respondErrorWith(w http.ResponseWriter, r *http.Request, err error, statusCode int, rec *feedback.Recorder) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	switch {
	case isHTMX(r):
		s.renderErrorPartial(w, r, userMsg, statusCode, rec)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		s.respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders a full error page.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	page := views.Layout("Erro", themeFromRequest(r), views.ErrorPage(msg.Message, msg.Action, msg.Code))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
	}
}

// renderErrorPartial writes the error toast header and an alert fragment.
func (s *Server) renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int, rec *feedback.Recorder) {
	if rec == nil {
		rec = feedback.NewRecorder()
	}
	if len(rec.Toasts()) == 0 {
		rec.Notify(toastText(msg), feedback.Error, 0)
	}
	if err := rec.WriteHeader(w.Header()); err != nil {
		logging.FromContext(r.Context()).Error("write feedback header", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func toastText(msg core.UserMessage) string {
	text := fmt.Sprintf("%s (Código: %s)", msg.Message, msg.Code)
	if msg.Action != "" {
		text += ". " + msg.Action
	}
	return text
}

// isHTMX checks if the request is an htmx request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
