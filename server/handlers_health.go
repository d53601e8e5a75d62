package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/capture"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
)

// HandleHealthz responds to liveness probe requests by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests with detailed system checks.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	maxAge := 2 * time.Minute
	if v := db.ConfigValue(r.Context(), h.db, "RADAR_READY_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			maxAge = d
		}
	}

	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.db.PingContext(r.Context()) }},
		{"session", func() error {
			if h.cfg != nil && h.cfg.SessionString != "" {
				return nil
			}
			_, ok, err := db.GetSession(r.Context(), h.db, db.DefaultSessionName)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no telegram session configured")
			}
			return nil
		}},
		{"recorder_heartbeat", func() error {
			hb := db.GetKVTime(r.Context(), h.db, capture.HeartbeatKey)
			if hb.IsZero() {
				return fmt.Errorf("recorder heartbeat never written")
			}
			if age := time.Since(hb); age > maxAge {
				return fmt.Errorf("recorder heartbeat stale: %s old", age.Round(time.Second))
			}
			return nil
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
