package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// serviceName is stamped on every line so gateway entries are
// separable from the upstream backend's in a shared log sink.
const serviceName = "titul-gateway"

// Setup initializes the global zerolog logger from LOG_LEVEL and
// LOG_FORMAT.
//   - level: trace, debug, info, warn, error, fatal or panic
//   - format: "json" for production, "pretty" for human-readable dev output
//
// Unparseable levels fall back to info.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer

	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	} else {
		writer = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	log := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()

	return log
}
