package group

import (
	"github.com/jqrel/jqrel/pkg/value"
)

// GroupByOp implements group_by(keys) of §4.5: a two-pass operator
// (bucket, then emit) that annotates each record with the grouping
// hierarchy rather than collapsing it, so the original records survive
// downstream of the group_by call.
//
// Bucketing is by the tuple of get_path(record, k) for k in Keys, using
// the Value equality rules of §4.1 (so 1 and 1.0 land in the same
// bucket). Bucket order is first-seen; within a bucket, input order is
// preserved. Chaining onto an already-grouped Source appends one
// GroupEntry per key to the existing hierarchy — it never rewrites the
// prior entries.
type GroupByOp struct {
	In   Source
	Keys []string
}

type bucket struct {
	key     []value.Value
	members []*GroupedRecord
}

// Build drains In, buckets it, and returns the grouped Source.
func (g *GroupByOp) Build() (Source, error) {
	in, err := Materialize(g.In)
	if err != nil {
		return nil, err
	}

	var order []*bucket
	index := make(map[uint64][]*bucket)
	for _, gr := range in {
		key := make([]value.Value, len(g.Keys))
		for i, k := range g.Keys {
			v, ok := value.GetPath(gr.Rec, k)
			if !ok {
				v = value.Null()
			}
			key[i] = v
		}
		h := value.HashTuple(key)
		var target *bucket
		for _, cand := range index[h] {
			if keysEqual(cand.key, key) {
				target = cand
				break
			}
		}
		if target == nil {
			target = &bucket{key: key}
			index[h] = append(index[h], target)
			order = append(order, target)
		}
		target.members = append(target.members, gr)
	}

	var out []*GroupedRecord
	for _, b := range order {
		for i, gr := range b.members {
			entries := append([]GroupEntry(nil), priorGroups(gr.Info)...)
			for j, k := range g.Keys {
				entries = append(entries, GroupEntry{Field: k, Value: b.key[j]})
			}
			out = append(out, &GroupedRecord{
				Rec: gr.Rec,
				Info: &GroupInfo{
					Groups: entries,
					Size:   len(b.members),
					Index:  i,
				},
			})
		}
	}
	return AsRelation(out), nil
}

func priorGroups(info *GroupInfo) []GroupEntry {
	if info == nil {
		return nil
	}
	return info.Groups
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

// PlainAdapter adapts a grouped Source back into a plain relop.Relation by
// dropping the GroupInfo side channel — used when a chain's terminal
// stage is not aggregate (e.g. `group_by(k) | select(...)` keeps the
// annotated records but the CLI driver still needs a plain Relation for
// output encoding unless the caller wants embedded `_group*` keys).
type PlainAdapter struct {
	In Source
}

func (p *PlainAdapter) Next() (*value.Object, error) {
	gr, err := p.In.Next()
	if err != nil {
		return nil, err
	}
	return gr.Rec, nil
}

// EmbeddedAdapter adapts a grouped Source into a plain relop.Relation by
// embedding `_groups`/`_group_size`/`_group_index` onto each record, for
// CLI output that must carry the grouping metadata in the JSONL itself.
type EmbeddedAdapter struct {
	In Source
}

func (e *EmbeddedAdapter) Next() (*value.Object, error) {
	gr, err := e.In.Next()
	if err != nil {
		return nil, err
	}
	return EmbedMetadata(gr), nil
}
