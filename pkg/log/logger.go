package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of an entry.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts debug, info, warn/warning, error and fatal in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Fields is the rendered key/value context of an entry.
type Fields map[string]any

// Entry is one formatted log event.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
}

// Logger is the logging interface passed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Logger
	WithComponent(component string) Logger
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter renders an entry to bytes.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output receives formatted entries.
type Output interface {
	Write(entry *Entry, formatted []byte) error
	Close() error
}

// LoggerOption configures a BaseLogger.
type LoggerOption func(*BaseLogger)

// WithLevel sets the minimum level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.core.level = level }
}

// WithFormatter sets the formatter. The default is JSON.
func WithFormatter(f Formatter) LoggerOption {
	return func(l *BaseLogger) { l.core.formatter = f }
}

// WithOutput adds an output. Without any, entries go to stderr.
func WithOutput(o Output) LoggerOption {
	return func(l *BaseLogger) { l.core.outputs = append(l.core.outputs, o) }
}

// WithRedaction masks the given field keys.
func WithRedaction(keys ...string) LoggerOption {
	return func(l *BaseLogger) { l.core.redact = append(l.core.redact, keys...) }
}

// WithSampling keeps the first initial entries per message and every
// thereafter-th one after that.
func WithSampling(initial, thereafter int) LoggerOption {
	return func(l *BaseLogger) { l.core.sampler = newSampler(initial, thereafter) }
}

// core is shared by a logger and every child derived with With.
type core struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	outputs   []Output
	redact    []string
	sampler   *sampler
}

// BaseLogger is the Logger implementation.
type BaseLogger struct {
	core *core
	slog *slog.Logger
}

// NewLogger returns a logger configured by opts.
func NewLogger(opts ...LoggerOption) Logger {
	l := &BaseLogger{core: &core{level: InfoLevel, formatter: &JSONFormatter{}}}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.core.outputs) == 0 {
		l.core.outputs = []Output{NewConsoleOutput()}
	}
	l.slog = slog.New(newBridgeHandler(l.core))
	return l
}

// Slog exposes the logger as a *slog.Logger sharing the same pipeline.
func (l *BaseLogger) Slog() *slog.Logger { return l.slog }

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if !l.core.enabled(level) {
		return
	}
	l.slog.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs(fields)...)
	if level == FatalLevel {
		l.core.close()
		os.Exit(1)
	}
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }
func (l *BaseLogger) Fatal(msg string, fields ...Field) { l.log(FatalLevel, msg, fields) }

func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &BaseLogger{core: l.core, slog: slog.New(l.slog.Handler().WithAttrs(attrs(fields)))}
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// WithContext copies the request id stored by ContextWithRequestID, if any.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With(Str(RequestIDKey, id))
	}
	return l
}

func (l *BaseLogger) SetLevel(level Level) {
	l.core.mu.Lock()
	l.core.level = level
	l.core.mu.Unlock()
}

func (l *BaseLogger) GetLevel() Level {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.level
}

func (c *core) enabled(level Level) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return level >= c.level
}

func (c *core) write(e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sampler != nil && !c.sampler.allow(e.Level, e.Message) {
		return nil
	}
	for _, k := range c.redact {
		if _, ok := e.Fields[k]; ok {
			e.Fields[k] = "[REDACTED]"
		}
	}
	b, err := c.formatter.Format(e)
	if err != nil {
		return err
	}
	for _, o := range c.outputs {
		_ = o.Write(e, b)
	}
	return nil
}

func (c *core) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.outputs {
		_ = o.Close()
	}
}

type ctxKey struct{}

// RequestIDKey is the field name used for request ids.
const RequestIDKey = "request_id"

// ContextWithRequestID stores a request id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
