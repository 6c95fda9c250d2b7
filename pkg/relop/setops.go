package relop

import (
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// UnionOp concatenates lhs then rhs; multiset union, no deduplication
// (§9 Open Questions resolves the ambiguity this way; distinct is the
// explicit deduplicator).
type UnionOp struct {
	Lhs, Rhs Relation
	rhsNow   bool
}

func (u *UnionOp) Next() (*value.Object, error) {
	if !u.rhsNow {
		rec, err := u.Lhs.Next()
		if err == nil {
			return rec, nil
		}
		if err != io.EOF {
			return nil, err
		}
		u.rhsNow = true
	}
	return u.Rhs.Next()
}

// IntersectionOp is a materializing multiset intersection: emits
// min(count_a, count_b) copies of each structurally-equal value.
type IntersectionOp struct {
	A, B Relation
}

func (op *IntersectionOp) Build() (Relation, error) {
	a, err := Materialize(op.A)
	if err != nil {
		return nil, err
	}
	b, err := Materialize(op.B)
	if err != nil {
		return nil, err
	}
	bCounts := bucketByHash(b)
	var out []*value.Object
	for _, rec := range a {
		h := value.Hash(value.FromObject(rec))
		bucket := bCounts[h]
		if bucket == nil {
			continue
		}
		for i, cand := range bucket.items {
			if bucket.used[i] >= bucket.have[i] {
				continue
			}
			if value.Equal(value.FromObject(rec), value.FromObject(cand)) {
				bucket.used[i]++
				out = append(out, rec)
				break
			}
		}
	}
	return FromSlice(out), nil
}

// DifferenceOp is a materializing multiset difference: emits
// max(0, count_a − count_b) copies.
type DifferenceOp struct {
	A, B Relation
}

func (op *DifferenceOp) Build() (Relation, error) {
	a, err := Materialize(op.A)
	if err != nil {
		return nil, err
	}
	b, err := Materialize(op.B)
	if err != nil {
		return nil, err
	}
	bCounts := bucketByHash(b)
	var out []*value.Object
	for _, rec := range a {
		h := value.Hash(value.FromObject(rec))
		bucket := bCounts[h]
		if bucket == nil {
			out = append(out, rec)
			continue
		}
		matched := false
		for i, cand := range bucket.items {
			if bucket.used[i] >= bucket.have[i] {
				continue
			}
			if value.Equal(value.FromObject(rec), value.FromObject(cand)) {
				bucket.used[i]++
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, rec)
		}
	}
	return FromSlice(out), nil
}

type hashBucket struct {
	items []*value.Object
	have  []int // multiplicity already folded into "used" bound; kept 1:1 with items here
	used  []int
}

// bucketByHash groups recs by structural hash, folding duplicate values
// (by full equality) into a single bucket slot with an incremented
// multiplicity, so intersection/difference run in O(|a|+|b|) rather than
// O(|a|*|b|).
func bucketByHash(recs []*value.Object) map[uint64]*hashBucket {
	out := make(map[uint64]*hashBucket)
	for _, rec := range recs {
		h := value.Hash(value.FromObject(rec))
		b, ok := out[h]
		if !ok {
			b = &hashBucket{}
			out[h] = b
		}
		found := false
		for i, cand := range b.items {
			if value.Equal(value.FromObject(rec), value.FromObject(cand)) {
				b.have[i]++
				found = true
				break
			}
		}
		if !found {
			b.items = append(b.items, rec)
			b.have = append(b.have, 1)
			b.used = append(b.used, 0)
		}
	}
	return out
}

// ProductOp is the cartesian product: for each record in A, for each
// record in B, emits the concatenation of both as a merged record with B's
// keys overwriting A's on collision (consistent with join's merge policy).
type ProductOp struct {
	A, B Relation

	aRecs []*value.Object
	bRecs []*value.Object
	ai    int
	bi    int
	built bool
}

func (op *ProductOp) Next() (*value.Object, error) {
	if !op.built {
		a, err := Materialize(op.A)
		if err != nil {
			return nil, err
		}
		b, err := Materialize(op.B)
		if err != nil {
			return nil, err
		}
		op.aRecs, op.bRecs, op.built = a, b, true
	}
	if len(op.aRecs) == 0 || len(op.bRecs) == 0 {
		return nil, io.EOF
	}
	if op.ai >= len(op.aRecs) {
		return nil, io.EOF
	}
	left, right := op.aRecs[op.ai], op.bRecs[op.bi]
	op.bi++
	if op.bi >= len(op.bRecs) {
		op.bi = 0
		op.ai++
	}
	return mergeRecords(left, right), nil
}

func mergeRecords(left, right *value.Object) *value.Object {
	out := left.Clone()
	right.Range(func(k string, v value.Value) bool {
		out.Set(k, v)
		return true
	})
	return out
}
