package planner

import (
	"io"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

// RunWindowed partitions in into fixed-size batches of size window,
// runs materialize (a materializing stage, e.g. a Sort or
// group_by+aggregate pipeline) independently over each batch, and
// concatenates the results — the windowed-mode semantics of §4.6.
// Batches preserve input order; results from successive windows are
// concatenated in window order, per §5's "windowed mode preserves input
// order between windows."
func RunWindowed(in relop.Relation, window int, materialize func(relop.Relation) (relop.Relation, error)) (relop.Relation, error) {
	var out []*value.Object
	for {
		batch, err := readBatch(in, window)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		rel, err := materialize(relop.FromSlice(batch))
		if err != nil {
			return nil, err
		}
		recs, err := relop.Materialize(rel)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
		if len(batch) < window {
			break
		}
	}
	return relop.FromSlice(out), nil
}

func readBatch(in relop.Relation, n int) ([]*value.Object, error) {
	batch := make([]*value.Object, 0, n)
	for len(batch) < n {
		rec, err := in.Next()
		if err == io.EOF {
			return batch, nil
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
	}
	return batch, nil
}
