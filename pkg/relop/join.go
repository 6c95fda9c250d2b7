package relop

import (
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// JoinMode selects the equi-join variant of §4.4.
type JoinMode int

const (
	JoinInner JoinMode = iota
	JoinLeft
	JoinRight
	JoinOuter
)

// JoinOp is a materializing equi-join over dotted paths. It builds a hash
// index over the right side keyed by the tuple of RightKeys values
// (coerced through the Value equality rules of §4.1), per the design
// note "Join index". For each left record it probes the index and emits
// the merged record; right keys overwrite left on collision. Non-inner
// modes fill missing fields with absent by simply omitting them.
type JoinOp struct {
	In        Relation // left, streamed
	LeftKeys  []string
	RightKeys []string
	Mode      JoinMode

	rightRecs []*value.Object
	index     map[uint64][]int
	matched   []bool
	built     bool

	pending    []*value.Object
	pendingIdx int
	leftDone   bool
	tailBuilt  bool
}

// NewJoinOp builds the right-side index eagerly (materializing, per
// §4.4's classification) and returns a ready JoinOp.
func NewJoinOp(in Relation, right Relation, leftKeys, rightKeys []string, mode JoinMode) (*JoinOp, error) {
	rightRecs, err := Materialize(right)
	if err != nil {
		return nil, err
	}
	index := make(map[uint64][]int, len(rightRecs))
	for i, rec := range rightRecs {
		key := joinKey(rec, rightKeys)
		h := value.HashTuple(key)
		index[h] = append(index[h], i)
	}
	return &JoinOp{
		In:        in,
		LeftKeys:  leftKeys,
		RightKeys: rightKeys,
		Mode:      mode,
		rightRecs: rightRecs,
		index:     index,
		matched:   make([]bool, len(rightRecs)),
		built:     true,
	}, nil
}

// joinKey evaluates the key tuple for rec; an absent component is
// treated as null, consistent with the filter sub-language's "absent ==
// null" rule — two absent/null join keys are considered equal.
func joinKey(rec *value.Object, paths []string) []value.Value {
	key := make([]value.Value, len(paths))
	for i, p := range paths {
		v, ok := value.GetPath(rec, p)
		if !ok {
			v = value.Null()
		}
		key[i] = v
	}
	return key
}

func keysEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !value.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (j *JoinOp) Next() (*value.Object, error) {
	for {
		if j.pendingIdx < len(j.pending) {
			rec := j.pending[j.pendingIdx]
			j.pendingIdx++
			return rec, nil
		}
		j.pending, j.pendingIdx = nil, 0

		if !j.leftDone {
			leftRec, err := j.In.Next()
			if err == io.EOF {
				j.leftDone = true
				continue
			}
			if err != nil {
				return nil, err
			}
			leftKey := joinKey(leftRec, j.LeftKeys)
			candidates := j.index[value.HashTuple(leftKey)]
			var matches []int
			for _, idx := range candidates {
				if keysEqual(leftKey, joinKey(j.rightRecs[idx], j.RightKeys)) {
					matches = append(matches, idx)
				}
			}
			if len(matches) > 0 {
				for _, idx := range matches {
					j.matched[idx] = true
					j.pending = append(j.pending, mergeRecords(leftRec, j.rightRecs[idx]))
				}
				continue
			}
			switch j.Mode {
			case JoinLeft, JoinOuter:
				j.pending = []*value.Object{leftRec.Clone()}
			default: // Inner, Right: an unmatched left row contributes nothing
			}
			continue
		}

		// Left side exhausted: right/outer modes still owe unmatched right rows.
		if j.Mode != JoinRight && j.Mode != JoinOuter {
			return nil, io.EOF
		}
		if !j.tailBuilt {
			j.tailBuilt = true
			for i, rec := range j.rightRecs {
				if !j.matched[i] {
					j.pending = append(j.pending, rec.Clone())
				}
			}
			if len(j.pending) == 0 {
				return nil, io.EOF
			}
			continue
		}
		return nil, io.EOF
	}
}
