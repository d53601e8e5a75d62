// Package main lists the account's dialogs with the marked chat ids the
// capture config expects. Use it to find the id of a group before pointing
// the daemon or the tail tool at it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/telegramx"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of dialogs to list")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateListenReady(); err != nil {
		slog.Error("missing telegram credentials; run the sessiongen tool first", slog.Any("err", err))
		os.Exit(1)
	}

	client, err := telegramx.NewClient(cfg)
	if err != nil {
		slog.Error("telegram client init failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := client.Connect(); err != nil {
		slog.Error("telegram connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer client.Stop()

	dialogs, err := client.ListDialogs(int32(*limit))
	if err != nil {
		slog.Error("listing dialogs failed", slog.Any("err", err))
		os.Exit(1)
	}

	known := map[int64]string{}
	for name, id := range config.KnownGroups {
		known[id] = name
	}

	fmt.Printf("%-16s %-8s %-6s %s\n", "ID", "KIND", "FORUM", "TITLE")
	for _, d := range dialogs {
		forum := ""
		if d.Forum {
			forum = "yes"
		}
		title := d.Title
		if name, ok := known[d.ID]; ok {
			title += " (" + name + ")"
		}
		fmt.Printf("%-16d %-8s %-6s %s\n", d.ID, d.Kind, forum, title)
	}
}
