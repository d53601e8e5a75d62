// Package capture contains the Telegram signal recorder.
//
// StartSignalRecorder subscribes to new-message events on an authorized
// Telegram client, keeps only messages from the watched group whose
// thread/topic id is in the watch list, prints each capture to stdout for
// debugging, persists it into the signal_messages table, and publishes it to
// the in-process broadcaster feeding the SSE live tail. Cancellation of the
// context stops the client and returns; an interrupt is a normal shutdown
// path, not an error.
package capture

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/telegramx"
	"github.com/AlbertLei-Web3/AlphaRadar/telemetry"
)

// HeartbeatKey is the kv row the recorder refreshes while it is delivering
// updates; /readyz treats a stale value as not ready.
const HeartbeatKey = "radar_heartbeat"

// StartSignalRecorder records watched-group messages until ctx is cancelled.
// It blocks; run it in a goroutine.
func StartSignalRecorder(ctx context.Context, dbx *sql.DB, src telegramx.Source, cfg *config.Config, bus *Broadcaster) {
	telemetry.SetWatchedThreads(len(cfg.ThreadIDs))

	src.OnNewMessage(func(m telegramx.Message) error {
		var err error
		telemetry.TimeFunc(telemetry.HandlerDuration, func() {
			err = handleMessage(ctx, dbx, cfg, bus, m)
		})
		if err != nil && telemetry.HandlerErrors != nil {
			telemetry.HandlerErrors.Inc()
		}
		// Never propagate into the updates loop; failures are logged and counted.
		return nil
	})

	// Heartbeat for readiness while the updates loop is alive.
	hbEvery := 15 * time.Second
	if v := db.ConfigValue(ctx, dbx, "RADAR_HEARTBEAT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			hbEvery = d
		}
	}
	if dbx != nil {
		go func() {
			ticker := time.NewTicker(hbEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := db.SetKV(ctx, dbx, HeartbeatKey, time.Now().UTC().Format(time.RFC3339)); err != nil && ctx.Err() == nil {
						slog.Warn("heartbeat write failed", slog.Any("err", err))
					}
				}
			}
		}()
	}

	// Handle context cancellation by stopping the client.
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		src.Stop()
		close(done)
	}()

	telemetry.SetConnected(true)
	slog.Info("signal recorder started",
		slog.Int64("group_id", cfg.GroupID),
		slog.Any("thread_ids", cfg.ThreadIDs))
	src.Idle()
	telemetry.SetConnected(false)
	<-done
	slog.Info("signal recorder stopped")
}

func handleMessage(ctx context.Context, dbx *sql.DB, cfg *config.Config, bus *Broadcaster, m telegramx.Message) error {
	if !telegramx.SameChat(m.ChatID, cfg.GroupID) {
		if telemetry.MessagesFiltered != nil {
			telemetry.MessagesFiltered.Inc()
		}
		return nil
	}
	if !cfg.WatchesThread(m.ThreadID) {
		if telemetry.MessagesFiltered != nil {
			telemetry.MessagesFiltered.Inc()
		}
		return nil
	}

	// Debug output, printed verbatim like the original listener script.
	fmt.Print(FormatMessage(m))

	sig := db.SignalMessage{
		ChatID:    cfg.GroupID,
		ThreadID:  m.ThreadID,
		MessageID: m.MessageID,
		Sender:    m.Sender,
		Text:      m.Text,
		EventDate: m.Date,
	}
	var insertErr error
	if dbx != nil {
		if err := db.InsertSignalMessage(ctx, dbx, sig); err != nil {
			if telemetry.InsertFailures != nil {
				telemetry.InsertFailures.Inc()
			}
			slog.Error("failed to insert signal message", slog.Any("err", err))
			insertErr = err
		}
	}
	if bus != nil {
		bus.Publish(sig)
	}
	if telemetry.MessagesCaptured != nil {
		telemetry.MessagesCaptured.Inc()
	}
	return insertErr
}

// FormatMessage renders one capture as the human-readable block the listener
// prints to stdout.
func FormatMessage(m telegramx.Message) string {
	ts := ""
	if !m.Date.IsZero() {
		ts = m.Date.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("\n--- new message ---\nThread ID: %d\nMessage ID: %d\nFrom: %s\nTime: %s\nContent: %s\n-------------------\n",
		m.ThreadID, m.MessageID, m.Sender, ts, m.Text)
}
