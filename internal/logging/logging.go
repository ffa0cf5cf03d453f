// Package logging sets up the zerolog loggers shared by the viewers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Options controls Setup.
type Options struct {
	Level   string
	Out     io.Writer // console output, os.Stderr when nil
	File    io.Writer // optional plain-text copy
	NoColor bool
}

// Setup builds the process logger. Every line carries the session id so
// output from concurrent viewer runs can be told apart.
func Setup(opts Options) (zerolog.Logger, string) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: opts.NoColor},
	}
	if opts.File != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.File, TimeFormat: time.RFC3339, NoColor: true})
	}

	session := uuid.NewString()
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Str("session", session).Logger()
	return logger, session
}

// Sampled wraps l so that bursty per-frame warnings (for example repeated
// catch-up clamps while the window is dragged) do not flood the console.
func Sampled(l zerolog.Logger) zerolog.Logger {
	return l.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})
}
