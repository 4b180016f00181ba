package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/journal-prompt-api/internal/metrics"
)

// Prometheus records request duration and count. The path label is the matched chi
// route pattern; every unmatched path shares metrics.UnmatchedRoute.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		if r.URL.Path == "/metrics" {
			return
		}
		metrics.RecordRequest(r.Method, routeLabel(r), rec.status, time.Since(start).Seconds())
	})
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return metrics.UnmatchedRoute
}
