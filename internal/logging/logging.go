package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process at the named level.
// Unknown or empty levels fall back to info.
func Setup(level string) zerolog.Logger {
	return SetupWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// SetupWithWriter configures zerolog to write to out.
func SetupWithWriter(level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(parsed)
	log.Logger = logger
	return logger
}
