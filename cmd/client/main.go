package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tcpong/internal/client"
	"tcpong/internal/config"
	"tcpong/internal/netwrk"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "config file (default config.yaml)")
		addr    = flag.String("addr", "", "server address (default listen_addr from the config)")
		idle    = flag.Bool("idle", false, "never move the paddle")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] new | join <lobby id>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd, err := client.ParseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*cfgPath, ".env")
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)
	if *addr == "" {
		*addr = cfg.ListenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, cmd, *idle, logger); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, cmd client.Command, idle bool, logger *slog.Logger) error {
	conn, err := netwrk.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	// unblocks the waits below on ctrl-c
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	bot := client.NewBot(conn, logger)
	bot.Idle = idle

	if cmd.New {
		id, err := bot.NewLobby()
		if err != nil {
			return err
		}
		fmt.Println("Lobby created, share this id with your opponent:", id)
		if err := bot.WaitForOpponent(); err != nil {
			return err
		}
	} else {
		if err := bot.JoinLobby(cmd.LobbyID); err != nil {
			return err
		}
		fmt.Println("Joined lobby", cmd.LobbyID)
	}

	fmt.Println("Opponent found, readying up...")
	result, err := bot.Play(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Game over:", result)
	return nil
}
