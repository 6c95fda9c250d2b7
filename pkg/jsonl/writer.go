package jsonl

import (
	"bufio"
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// Writer serializes Records to line-delimited JSON, per §4.3 and §6:
// insertion-order keys by default, sorted-keys as an opt-in, numbers in
// shortest round-trippable form, minimal string escaping.
type Writer struct {
	w          *bufio.Writer
	sortedKeys bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// SortedKeys switches member order to lexical, the writer's opt-in mode.
func SortedKeys() WriterOption {
	return func(w *Writer) { w.sortedKeys = true }
}

func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	out := &Writer{w: bufio.NewWriter(w)}
	for _, o := range opts {
		o(out)
	}
	return out
}

// WriteRecord writes one record followed by a newline.
func (w *Writer) WriteRecord(rec *value.Object) error {
	b, err := value.Encode(value.FromObject(rec), w.sortedKeys)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush flushes buffered output; callers must call it (or Close, if the
// underlying writer needs it) once the pipeline completes.
func (w *Writer) Flush() error { return w.w.Flush() }
