// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docvault/internal/config"
)

// New builds a logger from cfg and installs it as the global zerolog logger.
// The console writer always goes to stderr; a rotated file is added when
// enabled.
func New(cfg config.LogConfig, debug bool) zerolog.Logger {
	SetLevel(cfg.Level)

	writers := []io.Writer{
		zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.RFC3339
		}),
	}
	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	l := ctx.Logger()

	log.Logger = l
	return l
}

// SetLevel changes the global level; unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", level)
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
