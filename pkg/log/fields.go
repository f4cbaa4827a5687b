package log

import (
	"log/slog"
	"time"
)

// Field is one key/value pair of structured context.
type Field struct {
	Key   string
	Value any
}

// F builds a Field from any value.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

func Str(key, value string) Field           { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field     { return Field{Key: key, Value: value} }
func Dur(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err records err under "error"; a nil error yields an empty string.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags the entry with the emitting subsystem.
func Component(name string) Field { return Field{Key: "component", Value: name} }

func attrs(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	out := make([]slog.Attr, len(fields))
	for i, f := range fields {
		out[i] = slog.Any(f.Key, f.Value)
	}
	return out
}
