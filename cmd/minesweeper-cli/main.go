package main

import (
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/mines"
)

var (
	log = logrus.New()

	rows    int
	cols    int
	count   int
	seed    string
	rndSeed uint64
	logPath string
)

func init() {
	flag.IntVar(&rows, "rows", mines.DefaultParams.Rows, "board rows")
	flag.IntVar(&cols, "cols", mines.DefaultParams.Cols, "board columns")
	flag.IntVar(&count, "mines", mines.DefaultParams.Mines, "number of mines")
	flag.StringVar(&seed, "params", "", "board params as rows:cols:mines, overrides -rows, -cols and -mines")
	flag.Uint64Var(&rndSeed, "seed", 0, "random seed, 0 picks one")
	flag.StringVar(&logPath, "log", "minesweeper.log", "log file path")
}

// setupLogging sends logs to a rotating file only. Stdout belongs to the
// board.
func setupLogging() error {
	level := logrus.InfoLevel
	if config.Development() {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(io.Discard)

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Level:      level,
		Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	log.AddHook(hook)

	// engine debug lines end up in the same file
	mines.Log = slog.New(slog.NewTextHandler(log.WriterLevel(logrus.DebugLevel), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return nil
}

func gameParams() (mines.GameParams, error) {
	if seed != "" {
		params, err := mines.ParseSeed(seed)
		if err != nil {
			return mines.GameParams{}, err
		}
		return *params, nil
	}
	params := mines.GameParams{Rows: rows, Cols: cols, Mines: count}
	return params, params.Validate()
}

func createRand() *rand.Rand {
	if rndSeed != 0 {
		return rand.New(rand.NewPCG(rndSeed, rndSeed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	params, err := gameParams()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	game, err := newLocalGame(params, createRand())
	if err != nil {
		log.WithError(err).Fatal("unable to create game")
	}

	log.WithField("params", params.Seed()).Info("starting game")

	if err := play(os.Stdin, os.Stdout, game); err != nil {
		log.WithError(err).Fatal("game loop failed")
	}
}
