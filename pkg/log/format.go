package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// JSONFormatter renders one JSON object per line with ts, level and msg
// keys followed by the fields.
type JSONFormatter struct{}

func (JSONFormatter) Format(e *Entry) ([]byte, error) {
	m := make(map[string]any, len(e.Fields)+3)
	for k, v := range e.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		m[k] = v
	}
	m["ts"] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	m["level"] = e.Level.String()
	m["msg"] = e.Message
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// TextFormatter renders "ts LEVEL msg k=v ..." with keys sorted.
type TextFormatter struct {
	// DisableTimestamp drops the leading timestamp; useful in tests.
	DisableTimestamp bool
}

func (f TextFormatter) Format(e *Entry) ([]byte, error) {
	var b bytes.Buffer
	if !f.DisableTimestamp {
		b.WriteString(e.Timestamp.UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level, e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
