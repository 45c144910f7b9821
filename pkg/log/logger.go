package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog logger: JSON records on
// stderr so model output on stdout stays machine readable, with source
// locations and cockroachdb/errors stacktraces attached.
func SetupLogger(loglevel string) {
	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := newStackHandler(slog.NewJSONHandler(os.Stderr, &opts))
	slog.SetDefault(slog.New(handler))
}

// ToLogLevel maps a level flag value to its slog.Level and panics on
// anything else.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps err as a slog attribute under the key the stack
// handler watches for.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
