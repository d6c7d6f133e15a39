package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. format is "console" or "json".
func New(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	switch strings.ToLower(format) {
	case "", "console":
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			Level(lvl).
			With().
			Timestamp().
			Logger(), nil
	case "json":
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Logger(), nil
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q", format)
	}
}
