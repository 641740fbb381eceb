package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/minesweeper-classic/internal/app"
	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/mines"
	"github.com/vancomm/minesweeper-classic/migrations"
)

func main() {
	logger := config.NewLogger(os.Stderr)
	mines.Log = logger.With(slog.String("component", "mines"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(logger, migrations.FS)
	if err := a.Start(ctx); err != nil {
		logger.Error("failed to start app", slog.Any("error", err))
		os.Exit(1)
	}
}
