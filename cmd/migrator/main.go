package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/database"
	"github.com/vancomm/minesweeper-classic/migrations"
)

func main() {
	logger := config.NewLogger(os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, migrator, err := database.ConnectAndMigrate(ctx, migrations.FS)
	if err != nil {
		logger.Error("failed to migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Error("failed to check migration version", slog.Any("error", err))
		return
	}
	logger.Info("migration successful",
		slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}
