package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/db"
)

// HandleMessages returns recently captured messages, newest first.
// Query params: chat, thread (ids; 0 or absent = no filter), since (RFC3339),
// limit (default 100).
func (h *Handlers) HandleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	chatID := parseInt64Query(r, "chat", 0)
	threadID := parseInt64Query(r, "thread", 0)
	limit := parseIntQuery(r, "limit", 100)
	if limit <= 0 || limit > 5000 {
		limit = 100
	}
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid since: use RFC3339, e.g. 2026-01-02T15:04:05Z", http.StatusBadRequest)
			return
		}
		since = t
	}
	msgs, err := db.RecentSignalMessages(r.Context(), h.db, chatID, threadID, since, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []db.SignalMessage{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msgs)
}

// HandleMessagesStream pushes captures to the client as Server-Sent Events as
// they arrive. Optional thread query param narrows the stream to one topic.
func (h *Handlers) HandleMessagesStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.bus == nil {
		http.Error(w, "live stream unavailable", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	threadID := parseInt64Query(r, "thread", 0)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.bus.Subscribe(32)
	defer h.bus.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case m, open := <-sub:
			if !open {
				return
			}
			if threadID != 0 && m.ThreadID != threadID {
				continue
			}
			payload, err := json.Marshal(m)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
