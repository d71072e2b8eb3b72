// Package feedback is the user-feedback capability handed to components that
// need to report outcomes: toast notifications and a loading overlay.
//
// Components receive a [Notifier] instead of reaching for page-global state.
// The web layer uses a [Recorder] per response and turns the recorded events
// into an HX-Trigger header that the page's toast script listens for.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"
)

// Severity is the category of a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// DefaultDuration is used when a notification is sent with a zero duration.
const DefaultDuration = 5 * time.Second

// TriggerHeader is the response header HTMX reads client events from.
const TriggerHeader = "HX-Trigger"

// ParseSeverity converts a string to a Severity.
// Returns false for anything outside success, error, warning and info.
func ParseSeverity(s string) (Severity, bool) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case Success, Error, Warning, Info:
		return sev, true
	}
	return "", false
}

// Notifier reports user-facing feedback. Implementations are fire-and-forget:
// neither method can fail from the caller's point of view.
type Notifier interface {
	Notify(message string, severity Severity, duration time.Duration)
	SetLoading(active bool, message string)
}

// Nop discards all feedback.
type Nop struct{}

func (Nop) Notify(string, Severity, time.Duration) {}
func (Nop) SetLoading(bool, string)                {}

// Toast is one recorded notification.
type Toast struct {
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	DurationMS int64    `json:"durationMs"`
}

// Loading is the last requested loading overlay state.
type Loading struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// Draft states shown by the auto-save indicator.
const (
	DraftSaving = "saving"
	DraftSaved  = "saved"
)

// DraftStatus is the auto-save indicator state of a form.
type DraftStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Recorder collects feedback for a single response.
// It is not safe for concurrent use; create one per request.
type Recorder struct {
	toasts  []Toast
	loading *Loading
	draft   *DraftStatus
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records a toast. Unknown severities are recorded as Info.
func (r *Recorder) Notify(message string, severity Severity, duration time.Duration) {
	if _, ok := ParseSeverity(string(severity)); !ok {
		severity = Info
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	r.toasts = append(r.toasts, Toast{
		Message:    message,
		Severity:   severity,
		DurationMS: duration.Milliseconds(),
	})
}

// SetLoading records the overlay state. Only the last call is kept.
func (r *Recorder) SetLoading(active bool, message string) {
	r.loading = &Loading{Active: active, Message: message}
}

// SetDraftStatus records the auto-save indicator state. Only the last call
// is kept.
func (r *Recorder) SetDraftStatus(status, message string) {
	r.draft = &DraftStatus{Status: status, Message: message}
}

// Toasts returns the recorded toasts in order.
func (r *Recorder) Toasts() []Toast {
	return r.toasts
}

// Empty reports whether nothing was recorded.
func (r *Recorder) Empty() bool {
	return len(r.toasts) == 0 && r.loading == nil && r.draft == nil
}

// Trigger encodes the recorded events as an HX-Trigger JSON value.
// Returns "" when nothing was recorded.
func (r *Recorder) Trigger() (string, error) {
	if r.Empty() {
		return "", nil
	}

	events := make(map[string]any, 3)
	if len(r.toasts) > 0 {
		events["toast"] = r.toasts
	}
	if r.loading != nil {
		events["loading"] = r.loading
	}
	if r.draft != nil {
		events["autosave"] = r.draft
	}

	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("encode trigger: %w", err)
	}
	return escapeNonASCII(b), nil
}

// escapeNonASCII rewrites every rune outside ASCII as a JSON \u escape.
// Browsers decode header values as Latin-1.
func escapeNonASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&sb, `\u%04x`, r)
		}
	}
	return sb.String()
}

// WriteHeader sets the HX-Trigger header on h if anything was recorded.
// Must be called before the response status is written.
func (r *Recorder) WriteHeader(h http.Header) error {
	v, err := r.Trigger()
	if err != nil || v == "" {
		return err
	}
	h.Set(TriggerHeader, v)
	return nil
}

// Logger writes feedback to a slog.Logger. Used where no page is listening,
// such as background auto-save flushes.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Notifier that logs through l (slog.Default if nil).
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (l *Logger) Notify(message string, severity Severity, _ time.Duration) {
	level := slog.LevelInfo
	switch severity {
	case Error:
		level = slog.LevelError
	case Warning:
		level = slog.LevelWarn
	}
	l.log.Log(context.Background(), level, "feedback", "message", message, "severity", string(severity))
}

func (l *Logger) SetLoading(active bool, message string) {
	l.log.Debug("feedback loading", "active", active, "message", message)
}
