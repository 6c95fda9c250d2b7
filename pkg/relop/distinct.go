package relop

import (
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// DistinctOp maintains a set of seen record hashes; memory is O(#unique).
// Emission order is first-seen order.
type DistinctOp struct {
	In   Relation
	seen map[uint64][]*value.Object
}

func (d *DistinctOp) Next() (*value.Object, error) {
	if d.seen == nil {
		d.seen = make(map[uint64][]*value.Object)
	}
	for {
		rec, err := d.In.Next()
		if err != nil {
			return nil, err
		}
		h := value.Hash(value.FromObject(rec))
		bucket := d.seen[h]
		dup := false
		for _, cand := range bucket {
			if value.Equal(value.FromObject(rec), value.FromObject(cand)) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		d.seen[h] = append(bucket, rec)
		return rec, nil
	}
}

// TakeOp streams the first N records then terminates, exercising early
// termination per §4.4 and §5.
type TakeOp struct {
	In   Relation
	N    int
	seen int
}

func (t *TakeOp) Next() (*value.Object, error) {
	if t.seen >= t.N {
		return nil, io.EOF
	}
	rec, err := t.In.Next()
	if err != nil {
		return nil, err
	}
	t.seen++
	return rec, nil
}

// SkipOp streams all but the first N records.
type SkipOp struct {
	In      Relation
	N       int
	skipped int
}

func (s *SkipOp) Next() (*value.Object, error) {
	for s.skipped < s.N {
		if _, err := s.In.Next(); err != nil {
			return nil, err
		}
		s.skipped++
	}
	return s.In.Next()
}
