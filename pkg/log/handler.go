package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// stackHandler decorates another slog handler. When a record carries an
// ErrAttrKey attribute whose value is a cockroachdb/errors error, the
// captured stacktrace is added under StacktraceAttrKey before the record
// is passed on.
type stackHandler struct {
	next slog.Handler
}

func newStackHandler(next slog.Handler) slog.Handler {
	return &stackHandler{next: next}
}

func (h *stackHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *stackHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			stacktrace = extractStacktrace(err)
		}
		return false
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return h.next.Handle(ctx, r)
}

func (h *stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackHandler{next: h.next.WithAttrs(attrs)}
}

func (h *stackHandler) WithGroup(g string) slog.Handler {
	return &stackHandler{next: h.next.WithGroup(g)}
}

// extractStacktrace pulls the first safe detail, which is where
// errors.WithStack records the formatted stack.
func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
