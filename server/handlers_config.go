package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
)

// HandleAdminConfig handles GET and PUT requests for safe configuration keys.
// Overrides are stored in the kv table under cfg:<KEY> and win over the
// environment; the daemon folds them in at startup (config.ApplyOverrides)
// and the interval keys are resolved through db.ConfigValue at their point of
// use. Secrets (api hash, session string, encryption key) are never exposed
// or settable here.
func (h *Handlers) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	safeKeys := map[string]bool{
		"LOG_LEVEL":                true,
		"LOG_FORMAT":               true,
		"TELEGRAM_GROUP_ID":        true,
		"TELEGRAM_THREAD_IDS":      true,
		"RADAR_HEARTBEAT_INTERVAL": true,
		"RADAR_READY_MAX_AGE":      true,
		"SESSION_PROBE_INTERVAL":   true,
	}
	switch r.Method {
	case http.MethodGet:
		out := map[string]string{}
		for k := range safeKeys {
			if v := db.ConfigValue(r.Context(), h.db, k); v != "" {
				out[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPut:
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		for k, v := range body {
			if !safeKeys[k] {
				continue
			}
			v = strings.TrimSpace(v)
			// The watch list is validated on write so the stored override
			// always parses when the daemon applies it at startup.
			if k == "TELEGRAM_THREAD_IDS" && v != "" {
				if _, err := config.ParseThreadIDs(v); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
			}
			if _, err := h.db.ExecContext(
				r.Context(),
				`INSERT INTO kv (key,value,updated_at) VALUES ($1,$2,NOW()) ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`,
				"cfg:"+k,
				v,
			); err != nil {
				slog.Error("failed to update config", slog.String("key", k), slog.Any("err", err))
				http.Error(w, "failed to update config", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
