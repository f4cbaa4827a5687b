package log

import (
	"bytes"
	"fmt"
	stdlog "log"
	"strings"
)

// Config is the declarative form of a logger.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
	// Outputs lists "console", "null" or a file path.
	Outputs          []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	RedactKeys       []string `json:"redact_keys,omitempty" yaml:"redact_keys,omitempty"`
	SampleInitial    int      `json:"sample_initial,omitempty" yaml:"sample_initial,omitempty"`
	SampleThereafter int      `json:"sample_thereafter,omitempty" yaml:"sample_thereafter,omitempty"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := []LoggerOption{WithLevel(level)}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts = append(opts, WithFormatter(&TextFormatter{}))
	case "json":
		opts = append(opts, WithFormatter(&JSONFormatter{}))
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	for _, o := range cfg.Outputs {
		switch o {
		case "", "console":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		default:
			fo, err := NewFileOutput(o)
			if err != nil {
				return nil, fmt.Errorf("log output %s: %w", o, err)
			}
			opts = append(opts, WithOutput(fo))
		}
	}
	if len(cfg.RedactKeys) > 0 {
		opts = append(opts, WithRedaction(cfg.RedactKeys...))
	}
	if cfg.SampleThereafter > 0 {
		opts = append(opts, WithSampling(cfg.SampleInitial, cfg.SampleThereafter))
	}
	return NewLogger(opts...), nil
}

// RedirectStdLog sends the standard library logger's output to l at info
// level and returns a function restoring the previous writer.
func RedirectStdLog(l Logger) func() {
	prevFlags, prevPrefix, prevOut := stdlog.Flags(), stdlog.Prefix(), stdlog.Writer()
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{l: l.With(Component("stdlog"))})
	return func() {
		stdlog.SetFlags(prevFlags)
		stdlog.SetPrefix(prevPrefix)
		stdlog.SetOutput(prevOut)
	}
}

type stdWriter struct{ l Logger }

func (w stdWriter) Write(p []byte) (int, error) {
	if msg := string(bytes.TrimRight(p, "\r\n")); msg != "" {
		w.l.Info(msg)
	}
	return len(p), nil
}
