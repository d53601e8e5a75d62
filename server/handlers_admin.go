package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HandleAdminPrune deletes captures older than the given number of days
// (query param days, default 30). Returns the number of rows removed.
func (h *Handlers) HandleAdminPrune(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	days := parseIntQuery(r, "days", 30)
	if days <= 0 {
		http.Error(w, "days must be positive", http.StatusBadRequest)
		return
	}
	res, err := h.db.ExecContext(r.Context(),
		`DELETE FROM signal_messages WHERE captured_at < NOW() - ($1 || ' days')::interval`, days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	removed, _ := res.RowsAffected()
	slog.Info("pruned captures", slog.Int("days", days), slog.Int64("removed", removed))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"removed": removed, "days": days})
}
