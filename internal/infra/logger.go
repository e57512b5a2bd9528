package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger: JSON at info level, or a console
// writer at debug level when APP_ENV=development.
func NewLogger(appEnv string) zerolog.Logger {
	dev := appEnv == "development"

	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if dev {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "financetrack").
		Logger()
}
