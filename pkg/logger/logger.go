package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

var logger = slog.Default()

// ParseLevel returns the slog level for s, falling back to INFO.
func ParseLevel(s string) slog.Level {
	var lv slog.Level
	if s == "" || lv.UnmarshalText([]byte(s)) != nil {
		return slog.LevelInfo
	}
	return lv
}

// InitializeLogger replaces the package logger. With color the output is
// tinted for a terminal.
func InitializeLogger(level string, color bool) *slog.Logger {
	logger = slog.New(newHandler(os.Stdout, ParseLevel(level), color))
	return logger
}

func newHandler(w io.Writer, lv slog.Level, color bool) slog.Handler {
	if color {
		return tint.NewHandler(w, &tint.Options{
			Level:      lv,
			TimeFormat: time.DateTime,
		})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lv,
	})
}

func GetLogger(category string) *slog.Logger {
	return logger.With(slog.String("category", category))
}
