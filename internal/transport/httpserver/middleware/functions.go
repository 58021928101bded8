package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const FunctionsKeyHeader = "X-Functions-Key"

// RequireFunctionsKey guards the scheduled-function endpoints. An empty key
// disables them.
func RequireFunctionsKey(key string) func(http.Handler) http.Handler {
	key = strings.TrimSpace(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeError(w, http.StatusServiceUnavailable, "functions_disabled", "functions key not configured")
				return
			}
			provided := r.Header.Get(FunctionsKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid_functions_key", "invalid functions key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
