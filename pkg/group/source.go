// Package group implements the Grouping Engine of spec.md §4.5:
// metadata-preserving grouping (group_by) and an extensible aggregation
// dispatcher (aggregate).
//
// Per the design note "Group metadata... prefer carrying the metadata as
// an out-of-band side channel... rather than stuffing it into user
// records" — GroupInfo travels alongside each Record as a side channel
// (GroupedRecord) while the pipeline stays in-process. EmbedMetadata /
// ExtractMetadata fall back to the reserved `_group*` keys when a
// pipeline needs to cross a serialization boundary (a shell pipe between
// two invocations of the CLI), matching the spec's documented contract.
package group

import (
	"io"

	"github.com/jqrel/jqrel/pkg/value"
)

// GroupEntry is one {field, value} pair of the grouping hierarchy.
type GroupEntry struct {
	Field string
	Value value.Value
}

// GroupInfo is the metadata spec.md §3 attaches to a grouped record:
// the full grouping hierarchy (_groups), the innermost group's
// cardinality (_group_size), and this record's 0-based position within
// it (_group_index).
type GroupInfo struct {
	Groups []GroupEntry
	Size   int
	Index  int
}

// SameShape reports whether a and b carry the same sequence of grouping
// field names — the consistency aggregate requires of every record in
// its input (§4.5 invariant).
func (a *GroupInfo) SameShape(b *GroupInfo) bool {
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		if a.Groups[i].Field != b.Groups[i].Field {
			return false
		}
	}
	return true
}

// GroupedRecord pairs a Record with its (possibly nil) GroupInfo.
type GroupedRecord struct {
	Rec  *value.Object
	Info *GroupInfo
}

// Source is the grouping engine's pull-based input/output, generalizing
// relop.Relation with an out-of-band GroupInfo slot so group_by can
// chain onto either a plain relation or a previously grouped one.
type Source interface {
	Next() (*GroupedRecord, error)
}

// relation is the subset of relop.Relation this package depends on,
// spelled out locally to avoid an import cycle with pkg/relop.
type relation interface {
	Next() (*value.Object, error)
}

// Ungrouped adapts a plain relation into a Source with nil GroupInfo on
// every record — the starting point of any grouping chain.
func Ungrouped(rel relation) Source { return &ungroupedSource{rel: rel} }

type ungroupedSource struct{ rel relation }

func (u *ungroupedSource) Next() (*GroupedRecord, error) {
	rec, err := u.rel.Next()
	if err != nil {
		return nil, err
	}
	return &GroupedRecord{Rec: rec}, nil
}

// Materialize drains a Source into a slice, per the two-pass contract of
// group_by ("requires one pass to bucket, then one pass to emit").
func Materialize(src Source) ([]*GroupedRecord, error) {
	var out []*GroupedRecord
	for {
		gr, err := src.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, gr)
	}
}

// AsRelation adapts a slice of GroupedRecords back into a Source.
func AsRelation(recs []*GroupedRecord) Source { return &sliceSource{recs: recs} }

type sliceSource struct {
	recs []*GroupedRecord
	idx  int
}

func (s *sliceSource) Next() (*GroupedRecord, error) {
	if s.idx >= len(s.recs) {
		return nil, io.EOF
	}
	r := s.recs[s.idx]
	s.idx++
	return r, nil
}

// EmbedMetadata writes _groups/_group_size/_group_index onto a copy of
// rec's record, for callers crossing a serialization boundary.
func EmbedMetadata(gr *GroupedRecord) *value.Object {
	out := gr.Rec.Clone()
	if gr.Info == nil {
		return out
	}
	groups := make([]value.Value, len(gr.Info.Groups))
	for i, g := range gr.Info.Groups {
		entry := value.NewObject(2)
		entry.Set("field", value.String(g.Field))
		entry.Set("value", g.Value)
		groups[i] = value.FromObject(entry)
	}
	out.Set("_groups", value.Array(groups))
	out.Set("_group_size", value.Int(int64(gr.Info.Size)))
	out.Set("_group_index", value.Int(int64(gr.Info.Index)))
	return out
}

// ExtractMetadata reverses EmbedMetadata, used when a pipeline stage
// receives records read back from a file that embedded `_group*` keys.
func ExtractMetadata(rec *value.Object) *GroupedRecord {
	groupsVal, ok := rec.Get("_groups")
	if !ok {
		return &GroupedRecord{Rec: rec}
	}
	info := &GroupInfo{}
	for _, gv := range groupsVal.Arr() {
		fieldVal, _ := gv.Obj().Get("field")
		valueVal, _ := gv.Obj().Get("value")
		info.Groups = append(info.Groups, GroupEntry{Field: fieldVal.Str(), Value: valueVal})
	}
	if sz, ok := rec.Get("_group_size"); ok {
		info.Size = int(sz.Int())
	}
	if idx, ok := rec.Get("_group_index"); ok {
		info.Index = int(idx.Int())
	}
	clean := rec.Clone()
	clean.Delete("_groups")
	clean.Delete("_group_size")
	clean.Delete("_group_index")
	return &GroupedRecord{Rec: clean, Info: info}
}
