package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crucial707/journal-prompt-api/internal/metrics"
)

type key string

const credentialsKey key = "credentials"

// Credentials identifies the caller of an authenticated request. The password is
// never carried past the check.
type Credentials struct {
	Username string
}

// CredentialsFromContext returns the credentials stored by BasicAuth.Middleware.
func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	c, ok := ctx.Value(credentialsKey).(Credentials)
	return c, ok
}

// BasicAuth checks HTTP Basic credentials against a single configured pair.
// An empty Username or Password rejects every request.
type BasicAuth struct {
	Username string
	Password string
}

// Verify reports whether username and password match the configured pair.
// Both fields are always compared in constant time.
func (a BasicAuth) Verify(username, password string) bool {
	if a.Username == "" || a.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password))
	return userOK&passOK == 1
}

// Middleware rejects requests without valid credentials with 401 and a Basic challenge.
func (a BasicAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, _ := r.BasicAuth()
		if !a.Verify(username, password) {
			slog.Error("authentication failed", "username", username, "path", r.URL.Path)
			metrics.IncAuthFailures()
			w.Header().Set("WWW-Authenticate", "Basic")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "incorrect username or password"})
			return
		}

		ctx := context.WithValue(r.Context(), credentialsKey, Credentials{Username: username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
