// Package healthcheck intercepts liveness probes before they reach the
// application mux, so probes never touch the store.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck answers GET /health. When Store is set, GET /ready also
// verifies store connectivity.
type HealthCheck struct {
	Store Pinger
}

// Handler wraps h, short-circuiting probe requests.
func (hc HealthCheck) Handler(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			h.ServeHTTP(w, r)
			return
		}

		switch r.URL.Path {
		case "/health":
			writeStatus(w, http.StatusOK, "ok")
		case "/ready":
			hc.serveReady(w, r)
		default:
			h.ServeHTTP(w, r)
		}
	}

	return http.HandlerFunc(fn)
}

func (hc HealthCheck) serveReady(w http.ResponseWriter, r *http.Request) {
	if hc.Store != nil {
		if err := hc.Store.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	writeStatus(w, http.StatusOK, "ok")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
