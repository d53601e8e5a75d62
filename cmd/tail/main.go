// Package main tails new messages from one group straight to stdout, without
// touching the database. Useful for checking a group/thread id before wiring
// it into the daemon.
//
// Usage:
//
//	tail [--group ID] [--thread ID] [--raw]
//
// When --group is omitted the tool prompts for the id interactively. Both the
// marked form (-100xxxxxxxxxx) and the bare channel id are accepted. --raw
// dumps the full update instead of the formatted summary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AlbertLei-Web3/AlphaRadar/capture"
	"github.com/AlbertLei-Web3/AlphaRadar/config"
	"github.com/AlbertLei-Web3/AlphaRadar/telegramx"
)

func main() {
	group := flag.Int64("group", 0, "marked chat id to tail (prompted when omitted)")
	thread := flag.Int64("thread", 0, "thread/topic id filter (0 = all threads)")
	raw := flag.Bool("raw", false, "print the full update instead of the formatted summary")
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

	groupID := *group
	if groupID == 0 {
		groupID, err = promptGroupID(cfg.GroupID)
		if err != nil {
			slog.Error("bad group id", slog.Any("err", err))
			os.Exit(1)
		}
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

	threadNote := ""
	for name, id := range config.KnownThreads {
		if id == *thread {
			threadNote = " (" + name + ")"
		}
	}
	fmt.Fprintf(os.Stderr, "listening to %d (thread %d%s, 0 = all), Ctrl-C to stop\n", groupID, *thread, threadNote)

	client.OnNewMessage(func(m telegramx.Message) error {
		if !telegramx.SameChat(m.ChatID, groupID) {
			return nil
		}
		if *thread != 0 && m.ThreadID != *thread {
			return nil
		}
		if *raw {
			fmt.Println(m.Raw)
			return nil
		}
		fmt.Print(capture.FormatMessage(m))
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		client.Stop()
	}()
	client.Idle()
}

// promptGroupID asks for a chat id on stdin, defaulting to the configured
// group on an empty answer. A value like "abc" is reported as an error
// instead of crashing the tool.
func promptGroupID(def int64) (int64, error) {
	fmt.Fprintf(os.Stderr, "Group id to tail [%d]: ", def)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid group id %q: must be an integer like -1002202241417", line)
	}
	return id, nil
}
