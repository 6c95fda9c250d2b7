// Package jsonl implements the I/O Layer of spec.md §4.3: a lazy
// line-oriented JSONL reader and writer, plus LazyJSONL, the random-access
// index used by the virtual-filesystem navigator's read path.
package jsonl

import (
	"bufio"
	"io"
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

const maxLineSize = 64 * 1024 * 1024

// Reader yields Records lazily from a JSONL source, holding at most one
// parsed record and one source line in flight, per the streaming memory
// discipline of §5.
type Reader struct {
	path    string
	src     io.ReadCloser
	sc      *bufio.Scanner
	lineNo  int
	lenient bool
	dropped int
	closed  bool
}

// Option configures a Reader.
type Option func(*Reader)

// Lenient switches parse-failure handling from pipeline-fatal (default)
// to "skip and count the bad line" (§4.3, §7).
func Lenient() Option {
	return func(r *Reader) { r.lenient = true }
}

// NewReader returns a Reader over src, which the caller has already
// opened. path is not opened here; it only labels diagnostics ("-" or ""
// when src is the caller's stdin).
func NewReader(path string, src io.ReadCloser, opts ...Option) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	r := &Reader{path: path, src: src, sc: sc}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Next returns the next Record, or (nil, io.EOF) at end of input. On a
// malformed line it returns an InputParseError naming path and 1-based
// line number, unless Lenient() was set, in which case it skips the line,
// increments the drop counter, and continues.
func (r *Reader) Next() (*value.Object, error) {
	for r.sc.Scan() {
		r.lineNo++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		rec, err := value.DecodeRecord([]byte(line))
		if err != nil {
			if r.lenient {
				r.dropped++
				continue
			}
			return nil, jqerr.ParseErrorAt(r.path, r.lineNo, err)
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, jqerr.Wrap(jqerr.InputParseError, err, "reading "+r.path)
	}
	return nil, io.EOF
}

// Dropped reports how many lines were skipped under Lenient mode.
func (r *Reader) Dropped() int { return r.dropped }

// LineNo reports the 1-based line number of the most recently read line.
func (r *Reader) LineNo() int { return r.lineNo }

func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
