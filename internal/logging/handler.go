package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/steveyegge/console/internal/output"
	"github.com/steveyegge/console/internal/verbosity"
)

// Handler is a slog.Handler that renders records as single text lines
// ("msg key=value ...") and writes them through a sink, so library code can
// log with *slog.Logger and still honor -q and -v.
type Handler struct {
	sink   *output.Sink
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a Handler writing to sink.
func NewHandler(sink *output.Sink) *Handler {
	return &Handler{sink: sink}
}

// NewSlogLogger is shorthand for slog.New(NewHandler(sink)).
func NewSlogLogger(sink *output.Sink) *slog.Logger {
	return slog.New(NewHandler(sink))
}

// LevelForSlog maps slog levels onto the verbosity scale.
func LevelForSlog(l slog.Level) verbosity.Level {
	switch {
	case l >= slog.LevelWarn:
		return verbosity.Normal
	case l >= slog.LevelInfo:
		return verbosity.Info
	default:
		return verbosity.Debug
	}
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return h.sink.Gate().Allows(LevelForSlog(l))
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		appendAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, prefix, a)
		return true
	})

	h.sink.Write(b.String(), LevelForSlog(r.Level))
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := strings.Join(h.groups, ".")
	nh := h.clone()
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.groups = append(nh.groups, name)
	return nh
}

func (h *Handler) clone() *Handler {
	return &Handler{
		sink:   h.sink,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			appendAttr(b, key, ga)
		}
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	b.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		s = v.Duration().String()
	default:
		s = fmt.Sprint(v.Any())
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
