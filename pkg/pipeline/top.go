package pipeline

import "github.com/jqrel/jqrel/pkg/relop"

// Top returns the `top(n, key)` convenience Stage: the n records with
// the greatest value at the given dotted path (descending order,
// matching "top"), ties broken by input order. Passing asc=true
// returns the n smallest instead. It is a pure composition of sort+take
// (no new algorithmic surface), exposed as a single Pipeline Composer
// primitive per §4.7's convenience-batch-primitive spirit.
func Top(n int, key string, asc bool) Stage {
	return func(in relop.Relation) (relop.Relation, error) {
		sortOp := &relop.SortOp{In: in, Keys: []relop.SortKey{{Path: key, Desc: !asc}}}
		sorted, err := sortOp.Build()
		if err != nil {
			return nil, err
		}
		return &relop.TakeOp{In: sorted, N: n}, nil
	}
}
