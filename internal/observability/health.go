package observability

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ReadyStatus is the readiness endpoint response body.
type ReadyStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message,omitempty"`
}

// HealthCheckHandler reports liveness of the dictation client process.
func HealthCheckHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "healthy",
			Service:   "dictation",
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	}
}

// ReadyCheckFunc reports whether a dependency is ready.
type ReadyCheckFunc func() (bool, string)

// ReadinessHandler reports readiness to stream: in practice, whether
// complete device credentials are available.
func ReadinessHandler(check ReadyCheckFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready, message := true, ""
		if check != nil {
			ready, message = check()
		}

		status := ReadyStatus{Ready: ready, Message: message}
		w.Header().Set("Content-Type", "application/json")
		if ready {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}
