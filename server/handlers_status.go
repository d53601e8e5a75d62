package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/capture"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/session"
	"github.com/AlbertLei-Web3/AlphaRadar/telemetry"
)

// HandleStatus returns a lightweight status summary: capture totals, the
// watched group/threads, and connection freshness.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	resp := map[string]any{}

	total, lastCapture, err := db.CountSignalMessages(ctx, h.db)
	if err == nil {
		resp["captured_total"] = total
		if !lastCapture.IsZero() {
			resp["last_capture_at"] = lastCapture.UTC().Format(time.RFC3339)
		}
	}

	if h.cfg != nil {
		resp["group_id"] = h.cfg.GroupID
		resp["thread_ids"] = h.cfg.ThreadIDs
	}

	if hb := db.GetKVTime(ctx, h.db, capture.HeartbeatKey); !hb.IsZero() {
		resp["recorder_heartbeat"] = hb.UTC().Format(time.RFC3339)
	}
	if ok := db.GetKVTime(ctx, h.db, session.LastOKKey); !ok.IsZero() {
		resp["session_last_ok"] = ok.UTC().Format(time.RFC3339)
	}
	if ts := db.SessionUpdatedAt(ctx, h.db, db.DefaultSessionName); !ts.IsZero() {
		resp["session_updated_at"] = ts.UTC().Format(time.RFC3339)
	}

	resp["connected"] = telemetry.IsConnected()
	resp["uptime_seconds"] = int64(time.Since(h.startedAt).Seconds())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
