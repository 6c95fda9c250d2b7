package group

import (
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

// AggField is one output column of an aggregate() spec: Name is the
// result's field name, Fn is a registered aggregator name, and ArgPath
// is the dotted path each aggregator observes (ignored by zero-arg
// aggregators such as count).
type AggField struct {
	Name    string
	Fn      string
	ArgPath string
}

// AggregateOp implements aggregate(spec) of §4.5. It consumes a grouped
// Source and, for every innermost group, reduces it to one output record:
// the grouping-key paths become top-level keys (flattened — a dotted key
// is used verbatim, never re-nested) followed by the Fields outputs.
//
// WholeRelation marks a direct `aggregate()` call with no preceding
// group_by: the entire input becomes one implicit group, and per the
// boundary case in §4.4, an empty relation in this mode still yields
// exactly one output record (count is 0; aggregates with no observation
// to reduce, such as sum or avg, are absent from it) — whereas
// `group_by(k) | aggregate(...)` on empty input has zero groups and so
// yields zero records.
type AggregateOp struct {
	In            Source
	Fields        []AggField
	WholeRelation bool
}

// Build drains In and returns the aggregated relop.Relation.
func (a *AggregateOp) Build() (relop.Relation, error) {
	recs, err := Materialize(a.In)
	if err != nil {
		return nil, err
	}

	if a.WholeRelation {
		out, err := a.reduceGroup(nil, recs)
		if err != nil {
			return nil, err
		}
		return relop.FromSlice([]*value.Object{out}), nil
	}

	if len(recs) == 0 {
		return relop.FromSlice(nil), nil
	}

	if err := checkConsistentShape(recs); err != nil {
		return nil, err
	}

	var out []*value.Object
	var groupKeys []GroupEntry
	var current []*GroupedRecord
	flush := func() error {
		if current == nil {
			return nil
		}
		rec, err := a.reduceGroup(groupKeys, current)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	}
	for _, gr := range recs {
		if gr.Info.Index == 0 && current != nil {
			if err := flush(); err != nil {
				return nil, err
			}
			current = nil
		}
		if current == nil {
			groupKeys = gr.Info.Groups
		}
		current = append(current, gr)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return relop.FromSlice(out), nil
}

func checkConsistentShape(recs []*GroupedRecord) error {
	if recs[0].Info == nil {
		return jqerr.New(jqerr.PipelineError, "aggregate: record carries no group metadata; precede with group_by or call aggregate() directly on the whole relation")
	}
	for _, gr := range recs[1:] {
		if gr.Info == nil || !gr.Info.SameShape(recs[0].Info) {
			return jqerr.New(jqerr.PipelineError, "aggregate: inconsistent group metadata across input records")
		}
	}
	return nil
}

func (a *AggregateOp) reduceGroup(keys []GroupEntry, members []*GroupedRecord) (*value.Object, error) {
	out := value.NewObject(len(keys) + len(a.Fields))
	for _, k := range keys {
		out.Set(k.Field, k.Value)
	}
	for _, field := range a.Fields {
		factory, ok := Lookup(field.Fn)
		if !ok {
			return nil, jqerr.Newf(jqerr.PipelineError, "aggregate: unknown aggregator %q", field.Fn)
		}
		agg := factory()
		for _, gr := range members {
			v, ok := value.GetPath(gr.Rec, field.ArgPath)
			agg.Collect(v, !ok)
		}
		result, absent := agg.Finalize()
		if !absent {
			out.Set(field.Name, result)
		}
	}
	return out, nil
}
