package model

import (
	"context"
	"log/slog"
)

// slogType wraps a TypeRef as a slog.LogValuer so that type strings are
// only rendered when a record is actually emitted
func slogType(t TypeRef) slog.LogValuer { return typeLogValuer{t} }

type typeLogValuer struct{ TypeRef }

func (l typeLogValuer) LogValue() slog.Value { return slog.StringValue(TypeString(l.TypeRef)) }

// LogValue renders a method signature lazily
func (m MethodSig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", m.Name),
		slog.String("sig", m.String()),
	)
}

// LogHandler wraps underlying so that TypeRef attributes are printed as type strings
func LogHandler(underlying slog.Handler) slog.Handler {
	return &typeLogHandler{underlying: underlying}
}

type typeLogHandler struct {
	underlying slog.Handler
}

func (l *typeLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *typeLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrapAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *typeLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapAttr(attr)
	}
	return LogHandler(l.underlying.WithAttrs(wrapped))
}

func (l *typeLogHandler) WithGroup(name string) slog.Handler {
	return LogHandler(l.underlying.WithGroup(name))
}

func wrapAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	if t, ok := attr.Value.Any().(TypeRef); ok {
		attr.Value = slog.AnyValue(slogType(t))
	}
	return attr
}
