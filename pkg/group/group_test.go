package group

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

func objs(t *testing.T, lines ...string) []*value.Object {
	t.Helper()
	out := make([]*value.Object, len(lines))
	for i, l := range lines {
		r, err := value.DecodeRecord([]byte(l))
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func drain(t *testing.T, rel relop.Relation) []*value.Object {
	t.Helper()
	var out []*value.Object
	for {
		rec, err := rel.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestGroupByBucketsAndAnnotates(t *testing.T) {
	in := objs(t,
		`{"region":"east","v":1}`,
		`{"region":"west","v":2}`,
		`{"region":"east","v":3}`,
	)
	gb := &GroupByOp{In: Ungrouped(relop.FromSlice(in)), Keys: []string{"region"}}
	grouped, err := gb.Build()
	require.NoError(t, err)
	recs, err := Materialize(grouped)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// first-seen bucket order: east,east then west
	assert.Equal(t, "east", recs[0].Info.Groups[0].Value.Str())
	assert.Equal(t, "east", recs[1].Info.Groups[0].Value.Str())
	assert.Equal(t, "west", recs[2].Info.Groups[0].Value.Str())
	assert.Equal(t, 2, recs[0].Info.Size)
	assert.Equal(t, 0, recs[0].Info.Index)
	assert.Equal(t, 1, recs[1].Info.Index)
	assert.Equal(t, 1, recs[2].Info.Size)
}

func TestGroupByChainAppendsHierarchy(t *testing.T) {
	in := objs(t,
		`{"region":"east","product":"a"}`,
		`{"region":"east","product":"b"}`,
	)
	gb1 := &GroupByOp{In: Ungrouped(relop.FromSlice(in)), Keys: []string{"region"}}
	g1, err := gb1.Build()
	require.NoError(t, err)

	gb2 := &GroupByOp{In: g1, Keys: []string{"product"}}
	g2, err := gb2.Build()
	require.NoError(t, err)

	recs, err := Materialize(g2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Len(t, recs[0].Info.Groups, 2)
	assert.Equal(t, "region", recs[0].Info.Groups[0].Field)
	assert.Equal(t, "product", recs[0].Info.Groups[1].Field)
}

func TestAggregateAfterGroupBy(t *testing.T) {
	in := objs(t,
		`{"region":"east","v":1}`,
		`{"region":"east","v":3}`,
		`{"region":"west","v":10}`,
	)
	gb := &GroupByOp{In: Ungrouped(relop.FromSlice(in)), Keys: []string{"region"}}
	grouped, err := gb.Build()
	require.NoError(t, err)

	agg := &AggregateOp{
		In: grouped,
		Fields: []AggField{
			{Name: "total", Fn: "sum", ArgPath: "v"},
			{Name: "n", Fn: "count"},
		},
	}
	rel, err := agg.Build()
	require.NoError(t, err)
	out := drain(t, rel)
	require.Len(t, out, 2)

	region0, _ := out[0].Get("region")
	total0, _ := out[0].Get("total")
	assert.Equal(t, "east", region0.Str())
	assert.Equal(t, int64(4), total0.Int())

	region1, _ := out[1].Get("region")
	n1, _ := out[1].Get("n")
	assert.Equal(t, "west", region1.Str())
	assert.Equal(t, int64(1), n1.Int())
}

func TestAggregateWholeRelationOnEmptyYieldsOneRecord(t *testing.T) {
	agg := &AggregateOp{
		In:            Ungrouped(relop.FromSlice(nil)),
		Fields:        []AggField{{Name: "n", Fn: "count"}},
		WholeRelation: true,
	}
	rel, err := agg.Build()
	require.NoError(t, err)
	out := drain(t, rel)
	require.Len(t, out, 1)
	n, _ := out[0].Get("n")
	assert.Equal(t, int64(0), n.Int())
}

func TestAggregateChainedOnEmptyYieldsNoRecords(t *testing.T) {
	gb := &GroupByOp{In: Ungrouped(relop.FromSlice(nil)), Keys: []string{"region"}}
	grouped, err := gb.Build()
	require.NoError(t, err)
	agg := &AggregateOp{In: grouped, Fields: []AggField{{Name: "n", Fn: "count"}}}
	rel, err := agg.Build()
	require.NoError(t, err)
	assert.Empty(t, drain(t, rel))
}

func TestAggregateInconsistentShapeErrors(t *testing.T) {
	a := &GroupedRecord{Rec: objs(t, `{"x":1}`)[0], Info: &GroupInfo{Groups: []GroupEntry{{Field: "a"}}, Size: 1}}
	b := &GroupedRecord{Rec: objs(t, `{"x":2}`)[0], Info: &GroupInfo{Groups: []GroupEntry{{Field: "a"}, {Field: "b"}}, Size: 1}}
	agg := &AggregateOp{In: AsRelation([]*GroupedRecord{a, b}), Fields: []AggField{{Name: "n", Fn: "count"}}}
	_, err := agg.Build()
	assert.Error(t, err)
}

func TestBuiltinAggregatorsMinMaxMedianUnique(t *testing.T) {
	in := objs(t, `{"v":3}`, `{"v":1}`, `{"v":2}`, `{"v":1}`)
	agg := &AggregateOp{
		In: Ungrouped(relop.FromSlice(in)),
		Fields: []AggField{
			{Name: "lo", Fn: "min", ArgPath: "v"},
			{Name: "hi", Fn: "max", ArgPath: "v"},
			{Name: "mid", Fn: "median", ArgPath: "v"},
			{Name: "u", Fn: "unique", ArgPath: "v"},
		},
		WholeRelation: true,
	}
	rel, err := agg.Build()
	require.NoError(t, err)
	out := drain(t, rel)
	require.Len(t, out, 1)
	lo, _ := out[0].Get("lo")
	hi, _ := out[0].Get("hi")
	mid, _ := out[0].Get("mid")
	u, _ := out[0].Get("u")
	assert.Equal(t, int64(1), lo.Int())
	assert.Equal(t, int64(3), hi.Int())
	assert.Equal(t, 1.5, mid.Float())
	assert.Len(t, u.Arr(), 3)
}

func TestEmbedAndExtractMetadataRoundTrip(t *testing.T) {
	rec := objs(t, `{"region":"east","v":1}`)[0]
	gr := &GroupedRecord{Rec: rec, Info: &GroupInfo{Groups: []GroupEntry{{Field: "region", Value: value.String("east")}}, Size: 1, Index: 0}}
	embedded := EmbedMetadata(gr)
	_, hasGroups := embedded.Get("_groups")
	assert.True(t, hasGroups)

	restored := ExtractMetadata(embedded)
	require.NotNil(t, restored.Info)
	assert.Equal(t, "region", restored.Info.Groups[0].Field)
	assert.Equal(t, 1, restored.Info.Size)
	_, stillHasGroups := restored.Rec.Get("_groups")
	assert.False(t, stillHasGroups)
}
