package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

func lookupInt(key string, fallback int) (int, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unable to convert %s to int: %w", key, err)
	}
	return v, nil
}

func lookupDuration(key string, fallback time.Duration) (time.Duration, error) {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %s: %w", key, err)
	}
	return d, nil
}

// NewGame reads the default board from MINES_ROWS, MINES_COLS and
// MINES_COUNT. Unset variables fall back to [mines.DefaultParams].
func NewGame() (*mines.GameParams, error) {
	rows, err := lookupInt("MINES_ROWS", mines.DefaultParams.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := lookupInt("MINES_COLS", mines.DefaultParams.Cols)
	if err != nil {
		return nil, err
	}
	count, err := lookupInt("MINES_COUNT", mines.DefaultParams.Mines)
	if err != nil {
		return nil, err
	}

	params := &mines.GameParams{Rows: rows, Cols: cols, Mines: count}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

type Sessions struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func NewSessions() (*Sessions, error) {
	ttl, err := lookupDuration("SESSION_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	interval, err := lookupDuration("SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 || interval <= 0 {
		return nil, fmt.Errorf("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return &Sessions{TTL: ttl, SweepInterval: interval}, nil
}
