package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/TableUI/internal/config"
	"github.com/JonMunkholm/TableUI/internal/logging"
)

// authError mirrors the JSON error body of the web handlers so integration
// clients parse a single shape.
type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// APIKeyAuth guards the JSON integration routes. The key is read from
// X-API-Key or from an "Authorization: Bearer" header. Requests pass
// through untouched when cfg.RequireAPIKey is false.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			switch key := requestKey(r); {
			case key == "":
				reject(w, r, http.StatusUnauthorized, authError{
					Error:   "missing api key",
					Message: "Chave de API ausente",
					Action:  "Envie a chave no cabeçalho X-API-Key",
					Code:    "AUTH001",
				})
			case !isValidAPIKey(key, cfg.APIKeys):
				reject(w, r, http.StatusForbidden, authError{
					Error:   "invalid api key",
					Message: "Chave de API inválida",
					Action:  "Confira a chave configurada no cliente",
					Code:    "AUTH002",
				})
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > len("Bearer ") && strings.EqualFold(auth[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}

func reject(w http.ResponseWriter, r *http.Request, status int, body authError) {
	logging.FromContext(r.Context()).Warn("api key rejected",
		"code", body.Code,
		"path", r.URL.Path,
		"ip", ClientIP(r),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// isValidAPIKey compares key against every configured key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
