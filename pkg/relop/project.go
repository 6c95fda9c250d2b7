package relop

import (
	"github.com/jqrel/jqrel/pkg/expr"
	"github.com/jqrel/jqrel/pkg/value"
)

// ProjectOp emits, for each input record, a new record containing exactly
// the fields named by Fields. Missing paths become absent, which
// serialize to an omitted key unless NullForAbsent is set. Nest switches
// a dotted output key from the default flat literal-key semantics to the
// "structured" nested-mapping form (§4.2).
type ProjectOp struct {
	In             Relation
	Fields         []expr.ProjectionField
	NullForAbsent  bool
	Nest           bool
}

func (p *ProjectOp) Next() (*value.Object, error) {
	rec, err := p.In.Next()
	if err != nil {
		return nil, err
	}
	out := value.NewObject(len(p.Fields))
	for _, f := range p.Fields {
		v, absent, err := f.Eval(rec)
		if err != nil {
			return nil, err
		}
		if absent {
			if p.NullForAbsent {
				value.SetPath(out, f.OutputKey, value.Null(), p.Nest)
			}
			continue
		}
		value.SetPath(out, f.OutputKey, v, p.Nest)
	}
	return out, nil
}
