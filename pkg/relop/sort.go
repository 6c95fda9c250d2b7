package relop

import (
	"sort"

	"github.com/jqrel/jqrel/pkg/value"
)

// SortKey is one dotted-path sort key, with ties broken in declaration
// order per §4.4.
type SortKey struct {
	Path string
	Desc bool
}

// SortOp is a materializing, stable sort over dotted-path keys.
type SortOp struct {
	In   Relation
	Keys []SortKey
}

// Build materializes In, sorts it, and returns the sorted Relation.
// O(|input|) memory, per §5.
func (op *SortOp) Build() (Relation, error) {
	recs, err := Materialize(op.In)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, k := range op.Keys {
			vi, _ := value.GetPath(recs[i], k.Path)
			vj, _ := value.GetPath(recs[j], k.Path)
			c := value.Compare(vi, vj)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return FromSlice(recs), nil
}
