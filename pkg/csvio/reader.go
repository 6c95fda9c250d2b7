// Package csvio implements the CSV Reader/Writer supplement to the I/O
// Layer: a second source/sink format alongside pkg/jsonl, producing and
// consuming the same Value-model records rather than a typed-column Row.
// Adapted from the teacher's csvio package (header-row schema inference
// by sampling, buffered replay of the sample) — the column-typing
// algorithm survives unchanged, but its output is *value.Object, not a
// fixed-schema Row, so a CSV source composes with the same operators as
// a JSONL source.
package csvio

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

const inferSampleSize = 100

// colType is the inferred representation of one CSV column, mapped onto
// a Value Kind at parse time.
type colType int

const (
	colString colType = iota
	colInt
	colFloat
	colBool
	// colDateTime columns parse as RFC3339 but are represented as
	// KindString — the Value Model has no native date/time Kind, JSON
	// doesn't either, so a datetime column is still just a string
	// column that happens to validate as RFC3339.
	colDateTime
)

// inferType mirrors the teacher's sampling heuristic: a column is the
// narrowest type every non-empty sampled value parses as.
func inferType(values []string) colType {
	isInt, isFloat, isBool, isTime := true, true, true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(v); err != nil {
				isBool = false
			}
		}
		if isTime {
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				isTime = false
			}
		}
	}
	switch {
	case isInt:
		return colInt
	case isFloat:
		return colFloat
	case isBool:
		return colBool
	case isTime:
		return colDateTime
	default:
		return colString
	}
}

func parseValue(t colType, raw string) (value.Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return value.Null(), nil
	}
	switch t {
	case colInt:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(v), nil
	case colFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float(v), nil
	case colBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(v), nil
	case colDateTime:
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	default:
		return value.String(s), nil
	}
}

// Reader streams *value.Object records from a headered CSV file, typing
// each column from a bounded sample the way the teacher's csvio.Reader
// does, then replaying the sampled rows before continuing the scan.
type Reader struct {
	path     string
	file     *os.File
	csvr     *csv.Reader
	header   []string
	types    []colType
	buffer   [][]string
	bufferIx int
	lenient  bool
	dropped  int
}

// NewReader opens path, reads its header row, and samples up to
// inferSampleSize data rows to infer each column's type.
func NewReader(path string, lenient bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, jqerr.Wrap(jqerr.UsageError, err, "opening "+path)
	}
	csvr := csv.NewReader(f)
	csvr.FieldsPerRecord = -1

	head, err := csvr.Read()
	if err != nil {
		f.Close()
		return nil, jqerr.Wrap(jqerr.InputParseError, err, "reading CSV header from "+path)
	}
	header := append([]string(nil), head...)

	cols := make([][]string, len(header))
	buffer := make([][]string, 0, inferSampleSize)
	for i := 0; i < inferSampleSize; i++ {
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, jqerr.Wrap(jqerr.InputParseError, err, "sampling "+path)
		}
		cp := append([]string(nil), rec...)
		buffer = append(buffer, cp)
		for c := range header {
			if c < len(rec) {
				cols[c] = append(cols[c], rec[c])
			}
		}
	}
	types := make([]colType, len(header))
	for i := range header {
		types[i] = inferType(cols[i])
	}

	return &Reader{path: path, file: f, csvr: csvr, header: header, types: types, buffer: buffer, lenient: lenient}, nil
}

// Header returns the inferred column names, in file order.
func (r *Reader) Header() []string { return r.header }

func (r *Reader) Close() error { return r.file.Close() }

// Dropped reports rows skipped under lenient mode for an unparseable
// column value.
func (r *Reader) Dropped() int { return r.dropped }

// Next returns the next record, or (nil, io.EOF) at end of input.
func (r *Reader) Next() (*value.Object, error) {
	for {
		var rec []string
		var err error
		if r.bufferIx < len(r.buffer) {
			rec = r.buffer[r.bufferIx]
			r.bufferIx++
		} else {
			rec, err = r.csvr.Read()
			if err == io.EOF {
				return nil, io.EOF
			}
			if err != nil {
				return nil, jqerr.Wrap(jqerr.InputParseError, err, "reading "+r.path)
			}
		}
		obj, err := r.toRecord(rec)
		if err != nil {
			if r.lenient {
				r.dropped++
				continue
			}
			return nil, err
		}
		return obj, nil
	}
}

func (r *Reader) toRecord(rec []string) (*value.Object, error) {
	obj := value.NewObject(len(r.header))
	for i, name := range r.header {
		if i >= len(rec) {
			obj.Set(name, value.Null())
			continue
		}
		v, err := parseValue(r.types[i], rec[i])
		if err != nil {
			return nil, jqerr.Wrap(jqerr.InputParseError, err, "parsing column "+name)
		}
		obj.Set(name, v)
	}
	return obj, nil
}
