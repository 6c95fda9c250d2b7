package relop

import (
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

// Predicate evaluates a record, matching either expr.Filter.Matches or
// expr.AdvancedQuery.Matches — select(expr) is streaming and order- and
// duplicate-preserving regardless of which sub-language backs it.
type Predicate interface {
	Matches(rec *value.Object) (bool, error)
}

// EvalPolicy governs EvalError handling for per-record failures, per §7:
// Strict aborts the pipeline, Lenient drops the row and counts the drop.
type EvalPolicy int

const (
	Strict EvalPolicy = iota
	Lenient
)

// SelectOp emits each input record for which Predicate is truthy. O(1)
// memory; preserves order and duplicates.
type SelectOp struct {
	In      Relation
	Pred    Predicate
	Policy  EvalPolicy
	dropped int
}

func (s *SelectOp) Next() (*value.Object, error) {
	for {
		rec, err := s.In.Next()
		if err != nil {
			return nil, err
		}
		ok, err := s.Pred.Matches(rec)
		if err != nil {
			if jqerr.KindOf(err) == jqerr.EvalError && s.Policy == Lenient {
				s.dropped++
				continue
			}
			return nil, err
		}
		if ok {
			return rec, nil
		}
	}
}

// Dropped reports rows skipped under the Lenient policy.
func (s *SelectOp) Dropped() int { return s.dropped }
