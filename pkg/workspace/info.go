package workspace

import (
	"io"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/jsonl"
	"github.com/jqrel/jqrel/pkg/value"
)

const keySampleBound = 200

// Info is the result of info(): row count, byte size, the observed
// top-level keys (up to a sample bound), a preview record, and —
// per the `--lenient` supplement — the accumulated dropped-line count
// if the dataset was loaded in lenient mode.
type Info struct {
	Name       string
	Kind       Kind
	RowCount   int64
	SizeBytes  int64
	Keys       []string
	Preview    *value.Object
	Lenient    bool
	Dropped    int
}

// Info computes the descriptor's info() with one full pass over the
// dataset on every call: the pass counts rows, collects keys and takes
// the preview. The count is stored on the descriptor, but a later call
// does not reuse it and makes the full pass again.
func (w *Workspace) Info(name string) (*Info, error) {
	ds, ok := w.datasets.Get(name)
	if !ok {
		return nil, jqerr.Newf(jqerr.PipelineError, "no such dataset %q", name)
	}
	return ds.info()
}

func (ds *Dataset) info() (*Info, error) {
	r, err := ds.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	seenKeys := make(map[string]bool)
	var keys []string
	var preview *value.Object
	var n int64
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		n++
		if preview == nil {
			preview = rec
		}
		if len(keys) < keySampleBound {
			rec.Range(func(key string, _ value.Value) bool {
				if !seenKeys[key] {
					seenKeys[key] = true
					keys = append(keys, key)
				}
				return len(keys) < keySampleBound
			})
		}
	}
	ds.rowCount = &n
	ds.dropped = r.Dropped()

	return &Info{
		Name:      ds.Name,
		Kind:      ds.Kind,
		RowCount:  n,
		SizeBytes: ds.sizeBytes,
		Keys:      keys,
		Preview:   preview,
		Lenient:   ds.Lenient,
		Dropped:   ds.dropped,
	}, nil
}

// Ls streams the first limit records of the named dataset's relation to
// w, one JSON line per record.
func (ws *Workspace) Ls(name string, limit int, out io.Writer) error {
	ds, ok := ws.datasets.Get(name)
	if !ok {
		return jqerr.Newf(jqerr.PipelineError, "no such dataset %q", name)
	}
	r, err := ds.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	writer := jsonl.NewWriter(out)
	for i := 0; limit <= 0 || i < limit; i++ {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := writer.WriteRecord(rec); err != nil {
			return err
		}
	}
	return writer.Flush()
}
