package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/inarow-backend/internal/repository"
	"github.com/rocketscienceinc/inarow-backend/internal/usecase"
	"github.com/rocketscienceinc/inarow-backend/transport/terminal"
)

// main - plays N-in-a-row on the terminal against a local opponent.
func main() {
	debug := flag.Bool("debug", false, "log debug messages to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	games := usecase.NewGameManager(logger, repository.NewMemorySessionRepository())
	renderer := terminal.NewRenderer(termenv.NewOutput(os.Stdout))

	if err := terminal.NewClient(logger, games, renderer, os.Stdin).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "inarow: %v\n", err)
		os.Exit(1)
	}
}
