package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// HealthHandler serves the process's own liveness/readiness probes. Ready
// checks the one dependency that can actually make this service unable to
// serve traffic: the recordings database connection.
type HealthHandler struct {
	startTime time.Time
	version   string
	conn      *sql.DB
}

func NewHealthHandler(version string, conn *sql.DB) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
		conn:      conn,
	}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	GoVersion string `json:"go_version"`
	Timestamp string `json:"timestamp"`
}

// Health returns a basic health check response
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Ready returns whether the application is ready to serve traffic: the
// recordings database must be reachable, since every recordings API call
// depends on it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.conn.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

// Live returns whether the application is alive
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}
