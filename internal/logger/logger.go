package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// InitLogger builds the process logger. format "json" writes raw JSON lines,
// anything else a human readable console stream. Unknown levels mean info.
func InitLogger(level, format string) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if format == "json" {
		out = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
