// Package logger configures the shared zerolog instance for the
// PakProperty binaries. The server and worker emit JSON in production;
// the seeder and local runs use the console writer.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the application logger instance
var Logger zerolog.Logger

// Init configures the logger from the LOG_LEVEL and LOG_FORMAT settings
func Init(level, format string) {
	zerolog.SetGlobalLevel(parseLogLevel(level))

	var out io.Writer = os.Stdout
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	Logger = zerolog.New(out).With().
		Timestamp().
		Caller().
		Logger()
	log.Logger = Logger
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the configured logger instance
func GetLogger() zerolog.Logger {
	return Logger
}
