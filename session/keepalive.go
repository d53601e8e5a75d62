// Package session keeps the Telegram session healthy: it schedules jittered
// connectivity probes against the authorized client, records the last
// successful probe in the kv table for the readiness surface, and triggers a
// reconnect after repeated failures. The session string itself is persisted by
// the db package (encrypted at rest when configured).
package session

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"time"

	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/telemetry"
)

// LastOKKey is the kv row recording the last successful connectivity probe.
const LastOKKey = "session_last_ok"

// ProbeFunc checks that the session is still authorized and the connection alive.
type ProbeFunc func(ctx context.Context) error

// ReconnectFunc re-establishes the client connection after failed probes.
type ReconnectFunc func(ctx context.Context) error

// backoffInterval derives the next probe delay. Below the failure threshold
// the base interval stands; past it the delay doubles per extra consecutive
// failure, capped at 8x, so a dead connection is not hammered.
func backoffInterval(base time.Duration, failures, threshold int) time.Duration {
	if failures < threshold {
		return base
	}
	shift := failures - threshold + 1
	if shift > 3 {
		shift = 3
	}
	return base << shift
}

// StartKeepalive launches a goroutine that periodically probes the client.
// interval: how often to wake up and probe.
// failThreshold: consecutive failures before reconnect is invoked.
func StartKeepalive(ctx context.Context, dbx *sql.DB, interval time.Duration, failThreshold int, probe ProbeFunc, reconnect ReconnectFunc) {
	if interval <= 0 {
		interval = time.Minute
	}
	if failThreshold <= 0 {
		failThreshold = 3
	}
	// Randomize initial delay to spread load across instances.
	//nolint:gosec // G404: math/rand is sufficient for scheduling jitter, not used for security
	initialJitter := time.Duration(rand.Int63n(int64(interval/2) + 1))
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(initialJitter):
		}
		failures := 0
		for {
			// Back off while the connection stays down, with ±20% jitter for
			// scheduling diversity.
			nextSleep := backoffInterval(interval, failures, failThreshold)
			if jitterRange := int64(nextSleep / 5); jitterRange > 0 {
				//nolint:gosec // G404: math/rand is sufficient for scheduling jitter, not used for security
				nextSleep += time.Duration(rand.Int63n(jitterRange*2) - jitterRange)
				if nextSleep < interval/2 {
					nextSleep = interval / 2
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(nextSleep):
			}

			pctx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := probe(pctx)
			cancel()
			if err == nil {
				failures = 0
				telemetry.SetConnected(true)
				if dbx != nil {
					if kvErr := db.SetKV(ctx, dbx, LastOKKey, time.Now().UTC().Format(time.RFC3339)); kvErr != nil && ctx.Err() == nil {
						slog.Warn("keepalive kv write failed", slog.Any("err", kvErr))
					}
				}
				continue
			}
			failures++
			if telemetry.ProbeFailures != nil {
				telemetry.ProbeFailures.Inc()
			}
			telemetry.SetConnected(false)
			slog.Warn("session probe failed", slog.Int("consecutive", failures), slog.Any("err", err))
			if failures < failThreshold || reconnect == nil {
				continue
			}
			if telemetry.Reconnects != nil {
				telemetry.Reconnects.Inc()
			}
			rctx, rcancel := context.WithTimeout(ctx, 30*time.Second)
			err = reconnect(rctx)
			rcancel()
			if err != nil {
				slog.Error("reconnect failed", slog.Any("err", err))
				continue
			}
			failures = 0
			telemetry.SetConnected(true)
			slog.Info("telegram client reconnected")
		}
	}()
}
