package main

import (
	"io"
	"os"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/jsonl"
	"github.com/jqrel/jqrel/pkg/relop"
)

// openInput opens path as a relop.Relation; "-" or "" reads stdin,
// per §6's stdin/stdout protocol. The returned closer is always
// non-nil and safe to call even when the underlying reader has no
// resource to release.
func openInput(path string, stdin io.Reader, lenient bool) (relop.Relation, io.Closer, error) {
	if path == "" || path == "-" {
		var opts []jsonl.Option
		if lenient {
			opts = append(opts, jsonl.Lenient())
		}
		r := jsonl.NewReader("-", io.NopCloser(stdin), opts...)
		return r, r, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, jqerr.Wrap(jqerr.UsageError, err, "opening "+path)
	}
	var opts []jsonl.Option
	if lenient {
		opts = append(opts, jsonl.Lenient())
	}
	r := jsonl.NewReader(path, f, opts...)
	return r, r, nil
}

// writeAll drains rel, writing each record as a JSONL line to w.
func writeAll(rel relop.Relation, w io.Writer) error {
	out := jsonl.NewWriter(w)
	for {
		rec, err := rel.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := out.WriteRecord(rec); err != nil {
			return err
		}
	}
	return out.Flush()
}
