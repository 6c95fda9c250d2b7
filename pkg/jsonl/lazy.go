package jsonl

import (
	"bufio"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

const defaultCacheSize = 100

// LazyJSONL is the random-access view over a JSONL file used by the
// virtual-filesystem navigator (specified here only at its navigation
// contract, per SPEC_FULL.md §1). OpenLazy scans the file once when
// opening it and builds a sparse record_index → byte_offset map; RecordAt then seeks
// directly to the line rather than re-scanning from the top. Follows the
// labelCache pattern in grafana/loki's pkg/dataobj/builder.go: a bounded
// *lru.Cache holding recently parsed records.
type LazyJSONL struct {
	path    string
	offsets []int64
	cache   *lru.Cache[int, *value.Object]
}

// OpenLazy builds the offset index for path and returns a LazyJSONL
// backed by an LRU cache bounded by cacheSize records (default 100 when
// cacheSize <= 0).
func OpenLazy(path string, cacheSize int) (*LazyJSONL, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open lazy jsonl")
	}
	defer f.Close()

	var offsets []int64
	var pos int64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		offsets = append(offsets, pos)
		pos += int64(len(line)) + 1 // scanner strips the trailing newline
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "index lazy jsonl")
	}

	cache, err := lru.New[int, *value.Object](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create lru cache")
	}
	return &LazyJSONL{path: path, offsets: offsets, cache: cache}, nil
}

// Len reports the total indexed record count.
func (l *LazyJSONL) Len() int { return len(l.offsets) }

// RecordAt returns the parsed record at the given 0-based index, seeking
// to its byte offset and reading exactly one line on a cache miss.
func (l *LazyJSONL) RecordAt(i int) (*value.Object, error) {
	if i < 0 || i >= len(l.offsets) {
		return nil, errors.Errorf("record index %d out of range [0,%d)", i, len(l.offsets))
	}
	if rec, ok := l.cache.Get(i); ok {
		return rec, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, errors.Wrap(err, "open lazy jsonl")
	}
	defer f.Close()

	if _, err := f.Seek(l.offsets[i], 0); err != nil {
		return nil, errors.Wrap(err, "seek lazy jsonl")
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read lazy jsonl")
		}
		return nil, errors.New("unexpected end of file at indexed offset")
	}
	rec, err := value.DecodeRecord(sc.Bytes())
	if err != nil {
		return nil, jqerr.ParseErrorAt(l.path, i+1, err)
	}
	l.cache.Add(i, rec)
	return rec, nil
}
