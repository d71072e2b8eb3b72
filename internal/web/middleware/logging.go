// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/TableUI/internal/logging"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logger logs one entry per request with the request ID attached.
//
// Table commands also carry the session ID from the route and the id of the
// element that fired the htmx request (the HX-Trigger request header), so a
// burst of search keystrokes or checkbox clicks can be followed per page.
//
// 5xx responses are logged at error level, 4xx at warn. Health checks and
// static assets are logged at debug.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
			"htmx", r.Header.Get("HX-Request") == "true",
			"ip", ClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if id := rc.URLParam("sessionID"); id != "" {
				attrs = append(attrs, "session_id", id)
			}
		}
		if trigger := r.Header.Get("HX-Trigger"); trigger != "" {
			attrs = append(attrs, "trigger", trigger)
		}

		logging.FromContext(r.Context()).Log(r.Context(), requestLevel(r.URL.Path, status), "request", attrs...)
	})
}

func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case path == "/healthz", strings.HasPrefix(path, "/static/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
