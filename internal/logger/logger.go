package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the global logger instance
var Log *slog.Logger

// Init installs the process logger. Development logs text at debug level,
// production logs JSON at info level. With a Sentry DSN, errors are also
// sent to Sentry.
func Init(isDev bool, sentryDSN string) {
	var extra []slog.Handler

	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			extra = append(extra, slogsentry.Option{
				Level: slog.LevelError,
			}.NewSentryHandler())
		}
	}

	Log = New(os.Stdout, isDev, extra...)
	slog.SetDefault(Log)
}

// New builds a logger writing to w, fanned out to any extra handlers.
func New(w io.Writer, isDev bool, extra ...slog.Handler) *slog.Logger {
	var base slog.Handler
	if isDev {
		base = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	if len(extra) == 0 {
		return slog.New(base)
	}

	return slog.New(slogmulti.Fanout(append([]slog.Handler{base}, extra...)...))
}

// Flush waits for buffered Sentry events. Call it before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}
