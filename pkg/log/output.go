package log

import (
	"io"
	"os"
	"sync"
)

// WriterOutput writes formatted entries to an io.Writer.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput wraps w.
func NewWriterOutput(w io.Writer) *WriterOutput { return &WriterOutput{w: w} }

// NewConsoleOutput writes to stderr.
func NewConsoleOutput() *WriterOutput { return NewWriterOutput(os.Stderr) }

func (o *WriterOutput) Write(_ *Entry, b []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(b)
	return err
}

func (o *WriterOutput) Close() error {
	if c, ok := o.w.(io.Closer); ok && o.w != os.Stderr && o.w != os.Stdout {
		return c.Close()
	}
	return nil
}

// NullOutput discards everything.
type NullOutput struct{}

func (NullOutput) Write(*Entry, []byte) error { return nil }
func (NullOutput) Close() error               { return nil }

// NewFileOutput appends to path, creating it if needed.
func NewFileOutput(path string) (*WriterOutput, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewWriterOutput(f), nil
}
