package relop

import (
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

// RenameMapping is one from_path → to_path pair of a rename operator.
type RenameMapping struct {
	From string
	To   string
}

// RenameOp applies a set of (from_path → to_path) mappings: a source may
// appear at most once; collisions in the target are an error (checked at
// construction, per §4.4 "Failure semantics" — strict mode elevates this
// to pipeline-fatal, which it already is here since it's structural).
type RenameOp struct {
	In       Relation
	Mappings []RenameMapping
}

// NewRenameOp validates Mappings and returns a ready RenameOp.
func NewRenameOp(in Relation, mappings []RenameMapping) (*RenameOp, error) {
	seenFrom := make(map[string]bool, len(mappings))
	seenTo := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if seenFrom[m.From] {
			return nil, jqerr.Newf(jqerr.PipelineError, "rename source used more than once: %s", m.From)
		}
		seenFrom[m.From] = true
		if seenTo[m.To] {
			return nil, jqerr.Newf(jqerr.PipelineError, "rename target collision: %s", m.To)
		}
		seenTo[m.To] = true
	}
	return &RenameOp{In: in, Mappings: mappings}, nil
}

func (r *RenameOp) Next() (*value.Object, error) {
	rec, err := r.In.Next()
	if err != nil {
		return nil, err
	}
	out := rec.Clone()
	for _, m := range r.Mappings {
		v, ok := value.GetPath(rec, m.From)
		if !ok {
			continue
		}
		out.Set(m.To, v)
		if !strings.Contains(m.From, ".") {
			out.Delete(m.From)
		}
	}
	return out, nil
}
