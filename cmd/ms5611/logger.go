package main

import (
	"log/slog"

	logger "github.com/d2r2/go-logger"

	loggerFactory "github.com/github0013/ms5611/pkg/logger"
)

// initLogger sets up slog and lowers or raises the d2r2 "i2c" package logger
// to the same level, so bus traffic is only dumped with -loglevel DEBUG.
func initLogger(level string) *slog.Logger {
	l := loggerFactory.InitializeLogger(level, false)
	logger.ChangePackageLogLevel("i2c", d2r2Level(loggerFactory.ParseLevel(level)))
	return l
}

func d2r2Level(lv slog.Level) logger.LogLevel {
	switch {
	case lv < slog.LevelInfo:
		return logger.DebugLevel
	case lv < slog.LevelWarn:
		return logger.InfoLevel
	case lv < slog.LevelError:
		return logger.WarnLevel
	default:
		return logger.ErrorLevel
	}
}
