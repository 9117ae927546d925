package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a JSON slog.Logger writing to stdout and, when logFile is set,
// to a size-rotated file as well. The returned closer releases the file.
func New(level, logFile string) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if logFile == "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), io.NopCloser(nil)
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		// Fallback to stdout only if the directory cannot be created
		l := slog.New(slog.NewJSONHandler(os.Stdout, opts))
		l.Warn("Failed to create log directory, file logging disabled", slog.String("error", err.Error()))
		return l, io.NopCloser(nil)
	}

	fileLogger := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     28, // Days
		Compress:   true,
	}

	writer := io.MultiWriter(os.Stdout, fileLogger)
	return slog.New(slog.NewJSONHandler(writer, opts)), fileLogger
}
