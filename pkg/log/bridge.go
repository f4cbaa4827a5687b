package log

import (
	"context"
	"log/slog"
	"strconv"
)

// bridgeHandler turns slog records into Entries for the logger core, so
// slog.Logger values obtained via Slog share formatting and outputs.
type bridgeHandler struct {
	core  *core
	attrs []slog.Attr
	group string
}

func newBridgeHandler(c *core) *bridgeHandler { return &bridgeHandler{core: c} }

func (h *bridgeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.core.enabled(fromSlogLevel(level))
}

func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(Fields, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fields[key] = a.Value.Any()
		return true
	})
	return h.core.write(&Entry{
		Level:     fromSlogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
		Timestamp: r.Time,
	})
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *bridgeHandler) WithGroup(name string) slog.Handler {
	nh := *h
	if nh.group != "" {
		name = nh.group + "." + name
	}
	nh.group = name
	return &nh
}

// sampler keeps the first initial entries of each message and then one in
// every thereafter.
type sampler struct {
	initial    uint64
	thereafter uint64
	counts     map[string]uint64
}

func newSampler(initial, thereafter int) *sampler {
	if thereafter <= 0 {
		return nil
	}
	return &sampler{
		initial:    uint64(max(initial, 0)),
		thereafter: uint64(thereafter),
		counts:     make(map[string]uint64),
	}
}

func (s *sampler) allow(level Level, msg string) bool {
	key := strconv.Itoa(int(level)) + ":" + msg
	n := s.counts[key]
	s.counts[key] = n + 1
	if n < s.initial {
		return true
	}
	return (n-s.initial)%s.thereafter == 0
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	case FatalLevel:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return DebugLevel
	case level < slog.LevelWarn:
		return InfoLevel
	case level < slog.LevelError:
		return WarnLevel
	case level < slog.LevelError+4:
		return ErrorLevel
	default:
		return FatalLevel
	}
}
