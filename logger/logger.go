package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Level resolves the LOG / LOG_LEVEL pair into a zerolog level.
//
//	LOG=1            -> info
//	LOG_LEVEL=debug  -> debug (info/error also supported)
//	LOG_LEVEL=off    -> disabled
//
// With neither set only errors are written.
func Level(logFlag, logLevel string) zerolog.Level {
	level := zerolog.ErrorLevel
	if logFlag == "1" {
		level = zerolog.InfoLevel
	}
	if lv := strings.ToLower(strings.TrimSpace(logLevel)); lv != "" {
		switch lv {
		case "debug":
			level = zerolog.DebugLevel
		case "info":
			level = zerolog.InfoLevel
		case "error":
			level = zerolog.ErrorLevel
		case "off", "none", "0":
			level = zerolog.Disabled
		default:
			// unknown -> error level
			level = zerolog.ErrorLevel
		}
	}
	return level
}

// New returns a logger writing to w at the level derived from LOG and
// LOG_LEVEL. A nil w means stderr with console formatting.
func New(w io.Writer, logFlag, logLevel string) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(Level(logFlag, logLevel)).
		With().
		Timestamp().
		Logger()
}

// Middleware attaches log to every request context and writes one debug
// line per request. Form bodies are never logged.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("latency", d).
			Msg("request")
	})
	return func(next http.Handler) http.Handler {
		return hlog.NewHandler(log)(hlog.RemoteAddrHandler("ip")(access(next)))
	}
}
