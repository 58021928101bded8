package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelCritical sits above ERROR and is rendered as "CRITICAL"; alerting keys on it.
const LevelCritical = slog.Level(12)

// Values of the error_kind attribute.
const (
	KindBusiness = "business"
	KindInternal = "internal"
)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
}

// Options configures New. The zero value writes INFO and above as JSON.
type Options struct {
	Level  slog.Level
	Format string
	// Attrs are attached to every record.
	Attrs []any
}

type logger struct {
	out *slog.Logger
}

// NewFromEnv reads LOG_LEVEL, LOG_FORMAT and ENV. Development defaults to debug.
func NewFromEnv() Logger {
	env := clean(os.Getenv("ENV"))
	attrs := []any{"service", "colors-app"}
	if env != "" {
		attrs = append(attrs, "env", env)
	}
	return New(os.Stdout, Options{
		Level:  levelFromEnv(os.Getenv("LOG_LEVEL"), env),
		Format: formatFromEnv(os.Getenv("LOG_FORMAT")),
		Attrs:  attrs,
	})
}

func New(output io.Writer, opts Options) Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: rewriteAttr}

	var handler slog.Handler = slog.NewJSONHandler(output, handlerOpts)
	if clean(opts.Format) == "text" {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	out := slog.New(handler)
	if len(opts.Attrs) > 0 {
		out = out.With(opts.Attrs...)
	}
	return &logger{out: out}
}

// Discard returns a logger that drops everything. Used by tests and tools.
func Discard() Logger {
	return &logger{out: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelCritical + 1}))}
}

func (l *logger) Debug(message string, args ...any) {
	l.out.Debug(message, args...)
}

func (l *logger) Info(message string, args ...any) {
	l.out.Info(message, args...)
}

func (l *logger) Warn(message string, args ...any) {
	l.out.Warn(message, args...)
}

func (l *logger) Error(message string, args ...any) {
	l.out.Error(message, args...)
}

func (l *logger) Critical(message string, args ...any) {
	l.out.Log(context.Background(), LevelCritical, message, args...)
}

// BusinessError logs expected domain failures (not found, conflicts) at WARN.
func (l *logger) BusinessError(message string, err error, args ...any) {
	l.failure(slog.LevelWarn, KindBusiness, message, err, args)
}

func (l *logger) InternalError(message string, err error, args ...any) {
	l.failure(slog.LevelError, KindInternal, message, err, args)
}

func (l *logger) failure(level slog.Level, kind, message string, err error, args []any) {
	if err == nil {
		return
	}
	attrs := make([]any, 0, len(args)+4)
	attrs = append(attrs, "err", err, "error_kind", kind)
	l.out.Log(context.Background(), level, message, append(attrs, args...)...)
}

func (l *logger) With(args ...any) Logger {
	return &logger{out: l.out.With(args...)}
}

func levelFromEnv(value, env string) slog.Level {
	switch clean(value) {
	case "critical", "fatal":
		return LevelCritical
	case "warning":
		return slog.LevelWarn
	case "":
	default:
		var level slog.Level
		if err := level.UnmarshalText([]byte(clean(value))); err == nil {
			return level
		}
	}

	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func formatFromEnv(value string) string {
	if clean(value) == "text" {
		return "text"
	}
	return "json"
}

func clean(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func rewriteAttr(_ []string, attr slog.Attr) slog.Attr {
	switch {
	case attr.Key == slog.LevelKey:
		if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
			attr.Value = slog.StringValue("CRITICAL")
		}
	case attr.Key == "phone" || strings.HasSuffix(attr.Key, "_phone"):
		attr.Value = slog.StringValue(maskPhone(attr.Value.String()))
	}
	return attr
}

// maskPhone keeps the leading + and the last two digits of a phone number.
func maskPhone(phone string) string {
	const visible = 2
	if len(phone) <= visible+1 {
		return strings.Repeat("*", len(phone))
	}
	var b strings.Builder
	for i, r := range phone {
		switch {
		case i == 0 && r == '+':
			b.WriteRune(r)
		case i >= len(phone)-visible:
			b.WriteRune(r)
		default:
			b.WriteByte('*')
		}
	}
	return b.String()
}
