// Package relop implements the Operator Core of spec.md §4.4: streaming,
// bounded-stateful, and materializing relational operators over
// pull-based Relation iterators, per the design note "Relations as
// iterators, not collections."
package relop

import (
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// Relation is a finite or lazy multiset of Records, pulled one at a time.
// Next returns (nil, io.EOF) when exhausted. Early termination (e.g.
// take(n)) is expressed by the consumer simply stopping calls to Next;
// there is no explicit Close in the core — file handles live on the
// Reader, which the driver closes.
type Relation interface {
	Next() (*value.Object, error)
}

// sliceRelation replays an in-memory slice; used by materializing
// operators as both input-capture and output-replay.
type sliceRelation struct {
	recs []*value.Object
	idx  int
}

// FromSlice wraps an already-materialized slice of records as a Relation.
func FromSlice(recs []*value.Object) Relation {
	return &sliceRelation{recs: recs}
}

func (s *sliceRelation) Next() (*value.Object, error) {
	if s.idx >= len(s.recs) {
		return nil, io.EOF
	}
	r := s.recs[s.idx]
	s.idx++
	return r, nil
}

// Materialize drains rel into a slice. Used by operators that require a
// whole side in memory (§4.4 "Materializing").
func Materialize(rel Relation) ([]*value.Object, error) {
	var out []*value.Object
	for {
		rec, err := rel.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// Count drains rel, discarding records, just counting them.
func Count(rel Relation) (int, error) {
	n := 0
	for {
		_, err := rel.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}
