// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/bookclub/catalog/config"
)

// New returns a logger writing to stdout, plus a rolling file when
// cfg.Log.Path is set. Development mode uses the console writer.
func New(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	if cfg.Log.Path != "" {
		if dir := filepath.Dir(cfg.Log.Path); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.Log.Path,
			MaxSize:    nonZero(cfg.Log.MaxSizeMB, 100),
			MaxBackups: nonZero(cfg.Log.MaxBackups, 3),
			MaxAge:     nonZero(cfg.Log.MaxAgeDays, 7),
			Compress:   cfg.Log.Compress,
		})
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Log.Level)).
		With().
		Timestamp().
		Logger()
}

// Init builds the logger and installs it as the global one.
func Init(cfg config.Config) zerolog.Logger {
	logger := New(cfg)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func nonZero(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
