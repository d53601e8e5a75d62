// Command alpharadar is the main entrypoint for the signal capture daemon.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Connects the Telegram client (through the SOCKS proxy when enabled)
//     using the configured or stored session string.
//   - Starts the signal recorder for the watched group/threads and the
//     session keepalive probe.
//   - Exposes an HTTP server with /healthz, /readyz, /status, /messages,
//     /messages/stream, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlbertLei-Web3/AlphaRadar/capture"
	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/server"
	"github.com/AlbertLei-Web3/AlphaRadar/session"
	"github.com/AlbertLei-Web3/AlphaRadar/telegramx"
	"github.com/AlbertLei-Web3/AlphaRadar/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("alpharadar", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	// Run database migrations: versioned migrations (golang-migrate) first,
	// embedded SQL as the fallback for deployments without the migrations
	// directory on disk.
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.RunMigrations(database); err != nil {
		slog.Warn("versioned migrations failed, falling back to embedded SQL",
			slog.Any("err", err),
			slog.String("component", "db_migrate"))
		if err := db.Migrate(context.Background(), database); err != nil {
			slog.Error("failed to migrate db (both versioned and embedded SQL failed)", slog.Any("err", err))
			os.Exit(1)
		}
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Admin-stored config overrides (kv cfg:* rows, written through
	// /admin/config) win over the environment, the same precedence the
	// config endpoint reports.
	if err := cfg.ApplyOverrides(func(k string) (string, bool) {
		return db.GetConfigOverride(ctx, database, k)
	}); err != nil {
		slog.Warn("ignoring stored config override", slog.Any("err", err))
	}

	// Resolve the session string: environment wins, then the encrypted copy
	// stored by sessiongen --store.
	if cfg.SessionString == "" {
		stored, ok, err := db.GetSession(ctx, database, db.DefaultSessionName)
		if err != nil {
			slog.Error("loading stored session failed", slog.Any("err", err))
			os.Exit(1)
		}
		if ok {
			cfg.SessionString = stored
			slog.Info("using stored telegram session", slog.String("name", db.DefaultSessionName))
		}
	}
	if err := cfg.ValidateListenReady(); err != nil {
		slog.Error("not ready to capture; run the sessiongen tool first", slog.Any("err", err))
		os.Exit(1)
	}

	// Telegram client
	client, err := telegramx.NewClient(cfg)
	if err != nil {
		slog.Error("telegram client init failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := client.Connect(); err != nil {
		slog.Error("telegram connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	me, err := client.Me()
	if err != nil {
		slog.Error("telegram session not authorized", slog.Any("err", err))
		os.Exit(1)
	}
	slog.Info("telegram connected",
		slog.Int64("user_id", me.ID),
		slog.String("username", me.Username),
		slog.Int64("group_id", cfg.GroupID),
		slog.Any("thread_ids", cfg.ThreadIDs))

	bus := capture.NewBroadcaster()

	// Signal recorder: filters updates to the watched group/threads, prints
	// and persists them, and feeds the SSE stream.
	go capture.StartSignalRecorder(ctx, database, client, cfg, bus)

	// Keepalive: probe the session periodically and reconnect after repeated
	// failures.
	interval := 2 * time.Minute
	if v := db.ConfigValue(ctx, database, "SESSION_PROBE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}
	session.StartKeepalive(ctx, database, interval, 3,
		func(context.Context) error { return client.Ping() },
		func(context.Context) error {
			client.Stop()
			if err := client.Connect(); err != nil {
				return err
			}
			return client.Ping()
		})

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/messages/metrics)
	go func() {
		if err := server.Start(ctx, database, cfg, bus, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
