package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// SimStatus is a point-in-time snapshot of a running simulation, served
// by the status endpoint.
type SimStatus struct {
	// RunID identifies the current run, if results recording is on.
	RunID string `json:"run_id,omitempty"`

	// Tick is the engine's current tick counter.
	Tick uint64 `json:"tick"`

	// Agents is the number of agents currently in the model.
	Agents int `json:"agents"`

	// Rules is the number of registered rules.
	Rules int `json:"rules"`

	// Converged reports whether the last completed tick applied no
	// state changes.
	Converged bool `json:"converged"`
}

// LivenessHandler returns the handler for the liveness probe endpoint.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler returns the handler for the readiness probe endpoint.
// It runs every registered component check and answers 503 when any
// component is unhealthy.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// StatusHandler returns a handler that serves a live simulation snapshot.
// The snapshot function is called per request, so the response always
// reflects the current tick.
func StatusHandler(snapshot func() SimStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		type response struct {
			SimStatus
			Timestamp time.Time `json:"timestamp"`
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{
			SimStatus: snapshot(),
			Timestamp: time.Now(),
		})
	}
}
