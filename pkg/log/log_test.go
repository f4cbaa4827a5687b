package log

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
)

func newBuffered(opts ...LoggerOption) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	opts = append([]LoggerOption{WithOutput(NewWriterOutput(&buf))}, opts...)
	return NewLogger(opts...), &buf
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, " error ": ErrorLevel, "": InfoLevel} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestJSONEntryCarriesFields(t *testing.T) {
	l, buf := newBuffered()
	l.With(Component("streams")).Info("stream created", Str("stream", "s1"), Uint64("amount", 2000), Err(errors.New("boom")))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if m["msg"] != "stream created" || m["level"] != "INFO" || m["component"] != "streams" || m["stream"] != "s1" || m["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if m["amount"] != float64(2000) {
		t.Fatalf("amount = %v", m["amount"])
	}
}

func TestLevelGate(t *testing.T) {
	l, buf := newBuffered(WithLevel(WarnLevel), WithFormatter(&TextFormatter{DisableTimestamp: true}))
	l.Info("hidden")
	l.Warn("shown", Int("n", 1))
	if got := buf.String(); got != "WARN  shown n=1\n" {
		t.Fatalf("got %q", got)
	}
	l.SetLevel(DebugLevel)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("debug not logged after SetLevel")
	}
}

func TestRedactionAndSampling(t *testing.T) {
	l, buf := newBuffered(WithFormatter(&TextFormatter{DisableTimestamp: true}), WithRedaction("signer"), WithSampling(1, 2))
	for i := 0; i < 4; i++ {
		l.Info("tick", Str("signer", "alice"))
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("sampled lines = %d, want 3: %q", len(lines), buf.String())
	}
	if strings.Contains(buf.String(), "alice") {
		t.Fatalf("signer not redacted: %s", buf.String())
	}
}

func TestRedirectStdLog(t *testing.T) {
	l, buf := newBuffered(WithFormatter(&TextFormatter{DisableTimestamp: true}))
	restore := RedirectStdLog(l)
	stdlog.Printf("compaction %d", 7)
	restore()
	if got := buf.String(); got != "INFO  compaction 7 component=stdlog\n" {
		t.Fatalf("got %q", got)
	}
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(Config{Level: "debug", Format: "json", Outputs: []string{"null"}}); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if _, err := ApplyConfig(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}
