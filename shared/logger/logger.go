package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var Log *slog.Logger

func init() {
	// Safe defaults for tests and tools; serve calls Initialize with the config.
	Initialize("info", false)
}

// Initialize replaces the global logger, writing to stdout.
func Initialize(level string, useJSON bool) {
	Log = New(os.Stdout, level, useJSON)
	slog.SetDefault(Log)
}

// New builds a logger that reports the calling file:line like log.Lshortfile.
func New(w io.Writer, level string, useJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		AddSource:   true,
		ReplaceAttr: shortSource,
	}
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
		src.File = filepath.Base(src.File)
		src.Function = ""
	}
	return a
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
