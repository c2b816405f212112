package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"learning-buddy/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" writes human readable
// lines; anything else writes JSON.
func New(cfg config.LogConfig, appName string) zerolog.Logger {
	return NewWithWriter(cfg, appName, os.Stderr)
}

func NewWithWriter(cfg config.LogConfig, appName string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if appName != "" {
		l = l.Str("app", appName)
	}
	return l.Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
