// Package workspace implements the REPL core of spec.md §4.8: a named
// dataset registry, a current-dataset pointer, and a session-scoped
// scratch directory that derived datasets spill to.
package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/jsonl"
	"github.com/jqrel/jqrel/pkg/relop"
)

// Kind distinguishes a source dataset (loaded from a user-provided file)
// from a derived one (spilled by an operator invocation).
type Kind int

const (
	Source Kind = iota
	Derived
)

// Dataset is the descriptor §4.8 stores per registered name.
type Dataset struct {
	Name    string
	Kind    Kind
	Path    string
	Lenient bool

	rowCount  *int64 // nil until the first counting pass; cached after
	sizeBytes int64
	dropped   int // §7 lenient-mode dropped-line count, surfaced via info()
}

// datasetsByName orders the registry lexically by name — the SortedMap's
// comparison function compares the Dataset's own Name field, following
// the pattern in tobsdb/tobsdb's internal/builder/rows.go, where a
// SortedMap's order is driven by a field extracted from the stored value
// rather than the map key directly.
func datasetsByName(a, b *Dataset) bool { return a.Name < b.Name }

// Workspace is one REPL session's state: the dataset registry, the
// current pointer, and the scratch directory derived datasets spill to.
type Workspace struct {
	datasets   *sorted.SortedMap[string, *Dataset]
	current    string
	scratchDir string
	seq        int
	log        *logrus.Logger
}

// New creates a Workspace with a fresh, session-scoped scratch
// directory named "kqlrepl-<uuid>" under baseDir, per §4.8's invariant
// that scratch-directory names are session-scoped (safe to leave
// remnants on crash).
func New(baseDir string, log *logrus.Logger) (*Workspace, error) {
	if log == nil {
		log = logrus.New()
	}
	dir := filepath.Join(baseDir, "kqlrepl-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, jqerr.Wrap(jqerr.UsageError, err, "creating scratch directory")
	}
	return &Workspace{
		datasets:   sorted.New[string, *Dataset](8, datasetsByName),
		scratchDir: dir,
		log:        log,
	}, nil
}

// Close removes the scratch directory, per §4.8's normal-exit invariant.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.scratchDir)
}

// ScratchDir exposes the session scratch directory path, e.g. for the
// CLI driver to report it in diagnostics.
func (w *Workspace) ScratchDir() string { return w.scratchDir }

// Load registers path as a source dataset. name defaults to the file
// stem. Colliding names are rejected, per the uniqueness invariant.
func (w *Workspace) Load(path string, name string, lenient bool) (*Dataset, error) {
	if name == "" {
		name = stem(path)
	}
	if w.datasets.Has(name) {
		return nil, jqerr.Newf(jqerr.PipelineError, "dataset %q already exists", name)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, jqerr.Wrap(jqerr.UsageError, err, "loading "+path)
	}
	ds := &Dataset{Name: name, Kind: Source, Path: path, Lenient: lenient, sizeBytes: info.Size()}
	w.datasets.Insert(name, ds)
	w.current = name
	return ds, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

// Cd moves the current pointer to name.
func (w *Workspace) Cd(name string) error {
	if !w.datasets.Has(name) {
		return jqerr.Newf(jqerr.PipelineError, "no such dataset %q", name)
	}
	w.current = name
	return nil
}

// Pwd returns the current dataset's name, or "" if none is set.
func (w *Workspace) Pwd() string { return w.current }

// Get returns the descriptor registered under name.
func (w *Workspace) Get(name string) (*Dataset, bool) { return w.datasets.Get(name) }

// Current returns the current dataset's descriptor.
func (w *Workspace) Current() (*Dataset, error) {
	if w.current == "" {
		return nil, jqerr.New(jqerr.PipelineError, "no current dataset")
	}
	ds, ok := w.datasets.Get(w.current)
	if !ok {
		return nil, jqerr.Newf(jqerr.PipelineError, "current dataset %q no longer registered", w.current)
	}
	return ds, nil
}

// Datasets lists every registered dataset in lexical order. Callers
// compare each Dataset.Name against Pwd() to mark the current one.
func (w *Workspace) Datasets() []*Dataset {
	out := make([]*Dataset, 0, w.datasets.Len())
	ch, err := w.datasets.IterCh()
	if err != nil {
		return out
	}
	defer ch.Close()
	for rec := range ch.Records() {
		out = append(out, rec.Val)
	}
	return out
}

// Open opens ds's backing file for reading, as a jsonl.Reader.
func (ds *Dataset) Open() (*jsonl.Reader, error) {
	f, err := os.Open(ds.Path)
	if err != nil {
		return nil, jqerr.Wrap(jqerr.UsageError, err, "opening "+ds.Path)
	}
	var opts []jsonl.Option
	if ds.Lenient {
		opts = append(opts, jsonl.Lenient())
	}
	return jsonl.NewReader(ds.Path, f, opts...), nil
}

// Relation opens ds and returns it as a relop.Relation, tracking dropped
// lines for info()'s lenient-count supplement.
func (ds *Dataset) Relation() (relop.Relation, func() int, error) {
	r, err := ds.Open()
	if err != nil {
		return nil, nil, err
	}
	return r, r.Dropped, nil
}

// RunOperator executes result (the already-built output Relation of an
// operator invocation against w.Current()), spills it to
// "<scratch>/<name>_<seq>.jsonl", registers it as derived, and moves
// current to it — the single write-then-register step every REPL
// operator command goes through (§4.8). One-shot CLI commands write to
// stdout and do not use a Workspace.
func (w *Workspace) RunOperator(name string, result relop.Relation) (*Dataset, error) {
	if w.datasets.Has(name) {
		return nil, jqerr.Newf(jqerr.PipelineError, "dataset %q already exists", name)
	}
	w.seq++
	path := filepath.Join(w.scratchDir, fmt.Sprintf("%s_%d.jsonl", name, w.seq))
	f, err := os.Create(path)
	if err != nil {
		return nil, jqerr.Wrap(jqerr.UsageError, err, "creating "+path)
	}
	writer := jsonl.NewWriter(f)
	n := 0
	for {
		rec, err := result.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := writer.WriteRecord(rec); err != nil {
			f.Close()
			return nil, err
		}
		n++
	}
	if err := writer.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	info, _ := os.Stat(path)
	var size int64
	if info != nil {
		size = info.Size()
	}
	rc := int64(n)
	ds := &Dataset{Name: name, Kind: Derived, Path: path, sizeBytes: size, rowCount: &rc}
	w.datasets.Insert(name, ds)
	w.current = name
	return ds, nil
}

// Save copies current's backing file to path, without registering it.
func (w *Workspace) Save(path string) error {
	cur, err := w.Current()
	if err != nil {
		return err
	}
	src, err := os.Open(cur.Path)
	if err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "opening "+cur.Path)
	}
	defer src.Close()
	dst, err := os.Create(path)
	if err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "creating "+path)
	}
	defer dst.Close()
	buf := make([]byte, 64*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return jqerr.Wrap(jqerr.UsageError, werr, "writing "+path)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return jqerr.Wrap(jqerr.UsageError, rerr, "reading "+cur.Path)
		}
	}
}
