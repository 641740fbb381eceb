package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// NewLogger returns a colored debug logger in development and a JSON
// logger otherwise.
func NewLogger(w io.Writer) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, nil)
	if Development() {
		handler = tint.NewHandler(w, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}
