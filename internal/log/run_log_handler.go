package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LineSink receives formatted log lines. The run recorder satisfies it, so
// a handler can append to a run's persisted log without importing storage.
type LineSink interface {
	AppendLog(line string)
}

// RunLogHandler wraps an slog.Handler and mirrors records at or above a
// minimum level into a LineSink. The wrapped handler still receives every
// record unchanged.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Step code keeps logging through plain *slog.Logger without knowing
//     its warnings end up on the run record
type RunLogHandler struct {
	// handler is the underlying slog handler that receives all records.
	handler slog.Handler

	// sink receives formatted copies of records at or above min.
	sink LineSink

	// min is the lowest level mirrored into the sink.
	min slog.Level

	// attrs and groups carry WithAttrs/WithGroup state for sink formatting.
	attrs  []slog.Attr
	groups []string
}

// NewRunLogHandler creates a handler that mirrors records at or above min
// into sink. If handler is nil, the returned RunLogHandler wraps
// slog.Default().Handler().
func NewRunLogHandler(handler slog.Handler, sink LineSink, min slog.Level) *RunLogHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RunLogHandler{handler: handler, sink: sink, min: min}
}

// Enabled reports whether the handler handles records at the given level.
// A record is handled when either the underlying handler wants it or the
// sink would mirror it.
func (h *RunLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level) || level >= h.min
}

// Handle passes the record to the underlying handler and mirrors it into
// the sink when it reaches the minimum level.
func (h *RunLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.handler.Enabled(ctx, r.Level) {
		err = h.handler.Handle(ctx, r)
	}

	if h.sink != nil && r.Level >= h.min {
		h.sink.AppendLog(h.formatLine(r))
	}

	return err
}

// WithAttrs returns a new handler with the given attributes added. Keys
// are qualified with the groups open at add time so sink lines match the
// record structure.
func (h *RunLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.handler = h.handler.WithAttrs(attrs)

	prefix := strings.Join(h.groups, ".")
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		qualified = append(qualified, a)
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), qualified...)
	return &clone
}

// WithGroup returns a new handler with the given group name.
func (h *RunLogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.handler = h.handler.WithGroup(name)
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// formatLine renders a record as one human-readable line for the run log:
// the level, the message, then key=value pairs.
func (h *RunLogHandler) formatLine(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteString(" ")
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr, prefix string) {
		if a.Equal(slog.Attr{}) {
			return
		}
		b.WriteString(" ")
		if prefix != "" {
			b.WriteString(prefix)
			b.WriteString(".")
		}
		b.WriteString(a.Key)
		b.WriteString("=")
		fmt.Fprintf(&b, "%v", a.Value.Any())
	}

	// Stored attrs were qualified when added; record attrs live inside
	// every open group.
	for _, a := range h.attrs {
		writeAttr(a, "")
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a, prefix)
		return true
	})

	return b.String()
}
