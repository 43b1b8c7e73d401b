package base

import (
	"context"
	"log/slog"
	"runtime"
)

// SlogHandler routes slog records into an EventLogger, so that code written against log/slog reaches the same
// filters and handlers
//
// Attributes become extra fields; an error attribute under the key "error" or "err" becomes the exception info
type SlogHandler struct {
	target *EventLogger
	attrs  []slog.Attr
	prefix string
}

// NewSlogHandler creates a slog handler logging to the target logger
func NewSlogHandler(target *EventLogger) *SlogHandler {
	return &SlogHandler{target: target}
}

// Enabled checks the effective level of the target logger
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.target.IsEnabledFor(fromSlogLevel(level))
}

// Handle converts the record to a LogEvent and passes it to the target logger
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	level := fromSlogLevel(r.Level)
	if !h.target.IsEnabledFor(level) {
		return nil
	}
	extra := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	var exception *ExceptionInfo
	collect := func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && exception == nil && (a.Key == "error" || a.Key == "err") {
			exception = ExceptionInfoFromError(err)
			return true
		}
		flattenAttr(extra, "", a)
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		return collect(a)
	})
	if len(extra) == 0 {
		extra = nil
	}

	event := h.target.NewEvent(level, exception, extra, r.Message)
	if !r.Time.IsZero() {
		event.Time = r.Time
	}
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		event.SetCaller(r.PC, frame.File, frame.Line)
	}
	h.target.LogEvent(event)
	return nil
}

// WithAttrs returns a copy of the handler with additional attributes
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

// WithGroup returns a copy of the handler which prefixes further attribute keys by "name."
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func flattenAttr(extra map[string]interface{}, prefix string, a slog.Attr) {
	value := a.Value.Resolve()
	if value.Kind() != slog.KindGroup {
		extra[prefix+a.Key] = value.Any()
		return
	}
	groupPrefix := prefix
	if a.Key != "" {
		groupPrefix = prefix + a.Key + "."
	}
	for _, member := range value.Group() {
		flattenAttr(extra, groupPrefix, member)
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return DEBUG
	case level < slog.LevelWarn:
		return INFO
	case level < slog.LevelError:
		return WARNING
	case level < slog.LevelError+4:
		return ERROR
	default:
		return CRITICAL
	}
}
