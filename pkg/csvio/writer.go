package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/jqrel/jqrel/pkg/value"
)

// Writer serializes *value.Object records as CSV, writing the header
// row from the first record's key order (or an explicit column list)
// and rendering each Value through its CSV string form.
type Writer struct {
	w       *csv.Writer
	columns []string
	wrote   bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// Columns fixes the header/column order explicitly, instead of
// deriving it from the first record written.
func Columns(cols []string) WriterOption {
	return func(w *Writer) { w.columns = cols }
}

func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	out := &Writer{w: csv.NewWriter(w)}
	for _, o := range opts {
		o(out)
	}
	return out
}

// WriteRecord writes rec as one CSV row, writing the header first if
// this is the first call and no explicit column list was given.
func (w *Writer) WriteRecord(rec *value.Object) error {
	if !w.wrote {
		if w.columns == nil {
			w.columns = append([]string(nil), rec.Keys()...)
		}
		if err := w.w.Write(w.columns); err != nil {
			return err
		}
		w.wrote = true
	}
	row := make([]string, len(w.columns))
	for i, col := range w.columns {
		v, ok := rec.Get(col)
		if !ok {
			row[i] = ""
			continue
		}
		row[i] = cellString(v)
	}
	return w.w.Write(row)
}

func cellString(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return ""
	case value.KindString:
		return v.Str()
	case value.KindBool:
		return strconv.FormatBool(v.Bool())
	case value.KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case value.KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	default:
		// array/object columns have no native CSV cell form; fall back
		// to the Value Model's debug rendering rather than failing the
		// whole row.
		return v.String()
	}
}

func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
