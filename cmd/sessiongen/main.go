// Package main provides the interactive session generator.
//
// It signs in to Telegram with a phone number (the library prompts for the
// verification code and, when enabled, the 2FA password on stdin), then prints
// the resulting session string. The daemon and the other tools reuse that
// string so they never have to repeat the interactive login.
//
// Usage:
//
//	sessiongen [--store]
//
// Flags:
//
//	--store: additionally persist the session (encrypted when
//	         SESSION_ENCRYPTION_KEY is set) into the sessions table
//
// Environment Variables:
//
//	TELEGRAM_API_ID / TELEGRAM_API_HASH: app credentials from my.telegram.org
//	TELEGRAM_PHONE: skip the phone prompt
//	PROXY_*: SOCKS proxy settings (see .env.example)
//	DB_DSN, SESSION_ENCRYPTION_KEY: only used with --store
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/db"
	"github.com/AlbertLei-Web3/AlphaRadar/telegramx"
)

func main() {
	store := flag.Bool("store", false, "persist the session string into the database")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	// A fresh login always starts from an empty session.
	cfg.SessionString = ""

	phone := cfg.Phone
	if phone == "" {
		fmt.Print("Phone number (international format, e.g. +8613800138000): ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			slog.Error("reading phone number failed", slog.Any("err", err))
			os.Exit(1)
		}
		phone = strings.TrimSpace(line)
	}
	if phone == "" {
		slog.Error("no phone number provided (set TELEGRAM_PHONE or answer the prompt)")
		os.Exit(1)
	}

	client, err := telegramx.NewClient(cfg)
	if err != nil {
		slog.Error("telegram client init failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := client.Connect(); err != nil {
		slog.Error("telegram connect failed (check the proxy settings)", slog.Any("err", err))
		os.Exit(1)
	}
	if err := client.LoginPhone(phone); err != nil {
		slog.Error("login failed", slog.Any("err", err))
		os.Exit(1)
	}

	me, err := client.Me()
	if err != nil {
		slog.Error("authorized but fetching account failed", slog.Any("err", err))
		os.Exit(1)
	}
	sessionString := client.ExportSession()

	fmt.Println()
	fmt.Printf("Signed in as %s %s (@%s)\n", me.FirstName, me.LastName, me.Username)
	fmt.Println()
	fmt.Println("Session string (keep it secret, it grants full account access):")
	fmt.Println()
	fmt.Println(sessionString)
	fmt.Println()
	fmt.Println("Add it to your .env as TELEGRAM_SESSION_STRING=<string above>")

	if *store {
		database, err := db.Connect()
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer database.Close()
		ctx := context.Background()
		if err := db.Migrate(ctx, database); err != nil {
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		if err := db.UpsertSession(ctx, database, db.DefaultSessionName, sessionString); err != nil {
			slog.Error("failed to store session", slog.Any("err", err))
			os.Exit(1)
		}
		slog.Info("session stored", slog.String("name", db.DefaultSessionName))
	}

	client.Stop()
}
