package relop

import "github.com/jqrel/jqrel/pkg/value"

// ExplodePolicy governs explode's behavior when the value at Path is
// absent or not an array (§4.4).
type ExplodePolicy int

const (
	// PassThroughOnNonArray emits the record unchanged, with a warning
	// (the documented default).
	PassThroughOnNonArray ExplodePolicy = iota
	// DropOnNonArray emits zero records instead.
	DropOnNonArray
)

// ExplodeOp emits one record per element of the array at Path, replacing
// the value at Path with that element. OnWarning, if set, is called once
// per record that falls back to Policy instead of exploding.
type ExplodeOp struct {
	In       Relation
	Path     string
	Policy   ExplodePolicy
	OnWarning func(msg string)

	pending []*value.Object
	idx     int
}

func (e *ExplodeOp) Next() (*value.Object, error) {
	for {
		if e.idx < len(e.pending) {
			rec := e.pending[e.idx]
			e.idx++
			return rec, nil
		}
		e.pending = nil
		e.idx = 0

		rec, err := e.In.Next()
		if err != nil {
			return nil, err
		}
		v, ok := value.GetPath(rec, e.Path)
		if !ok || v.Kind() != value.KindArray {
			if e.OnWarning != nil {
				e.OnWarning("explode: path " + e.Path + " is absent or not an array")
			}
			if e.Policy == DropOnNonArray {
				continue
			}
			return rec, nil
		}
		elems := v.Arr()
		out := make([]*value.Object, len(elems))
		for i, el := range elems {
			clone := rec.DeepClone()
			value.ReplaceAtPath(clone, e.Path, el)
			out[i] = clone
		}
		e.pending = out
	}
}
