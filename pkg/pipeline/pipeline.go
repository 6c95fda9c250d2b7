// Package pipeline implements the Pipeline Composer of spec.md §4.7: an
// ergonomic, order-preserving way to build an operator chain as a list
// of self-contained stages, executed either eagerly (a concrete slice)
// or lazily (a Relation the caller pulls from).
package pipeline

import (
	"io"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

// Stage is one callable-like chain element: given an input Relation, it
// returns the Relation representing its output. Stages are applied
// left to right — order is significant, matching the teacher's
// operator structs that each wrap an upstream Relation.
type Stage func(relop.Relation) (relop.Relation, error)

// Pipeline is an ordered, immutable list of Stages. The zero value is
// the empty (identity) pipeline.
type Pipeline struct {
	stages []Stage
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Then appends stage, returning a new Pipeline — the left-associative
// "A then B" composition of §4.7. The receiver is left untouched so a
// Pipeline can be reused as a prefix for several branches.
func (p *Pipeline) Then(stage Stage) *Pipeline {
	next := make([]Stage, len(p.stages)+1)
	copy(next, p.stages)
	next[len(p.stages)] = stage
	return &Pipeline{stages: next}
}

// Lazy returns a Relation that applies every stage to in, in order, but
// only as records are pulled — building the full stage chain up front
// (each stage's Build-equivalent work, such as a Sort's Materialize,
// still happens eagerly inside that stage; "lazy" here means the
// Pipeline itself imposes no additional eager barrier between stages).
func (p *Pipeline) Lazy(in relop.Relation) (relop.Relation, error) {
	cur := in
	for _, stage := range p.stages {
		next, err := stage(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Eager runs the full pipeline and returns a concrete, already-drained
// slice of records rather than a Relation the caller must pull.
func (p *Pipeline) Eager(in relop.Relation) ([]*value.Object, error) {
	rel, err := p.Lazy(in)
	if err != nil {
		return nil, err
	}
	return relop.Materialize(rel)
}

// Batch is the batch(n) convenience primitive: a Stage that groups its
// input into fixed-size slices, emitted as one record per batch under
// the key "_batch" — a relop.Relation of batch-wrapper records, for
// consumers that need windowed handoff between otherwise-streaming
// stages (§4.7).
func Batch(n int) Stage {
	return func(in relop.Relation) (relop.Relation, error) {
		var out []*value.Object
		for {
			batch := make([]value.Value, 0, n)
			for len(batch) < n {
				rec, err := in.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, err
				}
				batch = append(batch, value.FromObject(rec))
			}
			if len(batch) == 0 {
				break
			}
			wrapper := value.NewObject(1)
			wrapper.Set("_batch", value.Array(batch))
			out = append(out, wrapper)
			if len(batch) < n {
				break
			}
		}
		return relop.FromSlice(out), nil
	}
}

// Flatten is the flatten convenience primitive: the inverse of Batch,
// unwrapping "_batch"-keyed records back into a flat record stream.
func Flatten() Stage {
	return func(in relop.Relation) (relop.Relation, error) {
		var out []*value.Object
		for {
			rec, err := in.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			batchVal, ok := rec.Get("_batch")
			if !ok {
				out = append(out, rec)
				continue
			}
			for _, elem := range batchVal.Arr() {
				if elem.Kind() == value.KindObject {
					out = append(out, elem.Obj())
				}
			}
		}
		return relop.FromSlice(out), nil
	}
}
