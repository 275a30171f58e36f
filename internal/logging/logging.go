// logging holds the process wide zerolog logger
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var L = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().
	Timestamp().
	Caller().
	Logger().
	Level(zerolog.InfoLevel)

func SetLogLevel(level zerolog.Level) {
	L = L.Level(level)
}

// ParseLevel maps the config names onto zerolog levels, unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch name {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
