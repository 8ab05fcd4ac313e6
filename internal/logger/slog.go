package logger

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// slogBridge forwards log/slog records to the zap logger so packages that
// log through the standard slog API share the configured cores.
type slogBridge struct {
	logger *zap.Logger
	attrs  []zap.Field
	group  string
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return b.logger.Core().Enabled(slogToZapLevel(level))
}

func (b *slogBridge) Handle(_ context.Context, rec slog.Record) error {
	fields := make([]zap.Field, 0, len(b.attrs)+rec.NumAttrs())
	fields = append(fields, b.attrs...)
	rec.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, b.attrToField(attr))
		return true
	})

	if ce := b.logger.Check(slogToZapLevel(rec.Level), rec.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(b.attrs)+len(attrs))
	fields = append(fields, b.attrs...)
	for _, attr := range attrs {
		fields = append(fields, b.attrToField(attr))
	}
	return &slogBridge{logger: b.logger, attrs: fields, group: b.group}
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	prefix := name
	if b.group != "" {
		prefix = b.group + "." + name
	}
	return &slogBridge{logger: b.logger, attrs: b.attrs, group: prefix}
}

func (b *slogBridge) attrToField(attr slog.Attr) zap.Field {
	key := attr.Key
	if b.group != "" {
		key = b.group + "." + key
	}
	return zap.Any(key, attr.Value.Any())
}

func slogToZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
