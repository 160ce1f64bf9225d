package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger: structured JSON in production, a console
// writer everywhere else.
func New(environment string) zerolog.Logger {
	if environment == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
