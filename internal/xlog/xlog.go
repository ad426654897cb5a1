// Package xlog wires the client's zerolog console/file output, the same
// way the rest of the corpus sets up its global logger.
package xlog

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const TimeFormat = "2006-01-02T15:04:05.000"

// Options configures Setup. FilePath is left empty to log to console only.
type Options struct {
	Level   string
	Pretty  bool
	FilePath string
}

// Setup installs a global zerolog.Logger per Options and returns it.
func Setup(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if opts.Pretty {
		if runtime.GOOS == "windows" {
			writers = append(writers, zerolog.ConsoleWriter{Out: colorable.NewColorableStdout(), TimeFormat: TimeFormat})
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: TimeFormat})
		}
	} else {
		writers = append(writers, os.Stdout)
	}

	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Error().Err(err).Str("path", opts.FilePath).Msg("xlog: could not open log file, console only")
		} else {
			writers = append(writers, f)
		}
	}

	logger := zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
