package relop

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/expr"
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

func drain(t *testing.T, rel Relation) []*value.Object {
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

// TestFilterThenProject mirrors §8 scenario 1.
func TestFilterThenProject(t *testing.T) {
	in := objs(t, `{"a":1,"b":"x"}`, `{"a":2,"b":"y"}`, `{"a":3,"b":"z"}`)
	f, err := expr.CompileFilter("a > 1")
	require.NoError(t, err)
	sel := &SelectOp{In: FromSlice(in), Pred: f}

	fields, err := expr.CompileProjection([]string{"b"})
	require.NoError(t, err)
	proj := &ProjectOp{In: sel, Fields: fields}

	out := drain(t, proj)
	require.Len(t, out, 2)
	v0, _ := out[0].Get("b")
	v1, _ := out[1].Get("b")
	assert.Equal(t, "y", v0.Str())
	assert.Equal(t, "z", v1.Str())
}

// TestJoinOnNestedPath mirrors §8 scenario 2.
func TestJoinOnNestedPath(t *testing.T) {
	left := objs(t, `{"u":{"id":1},"name":"A"}`, `{"u":{"id":2},"name":"B"}`)
	right := objs(t, `{"cid":1,"x":10}`, `{"cid":1,"x":20}`, `{"cid":3,"x":30}`)

	j, err := NewJoinOp(FromSlice(left), FromSlice(right), []string{"u.id"}, []string{"cid"}, JoinInner)
	require.NoError(t, err)
	out := drain(t, j)
	assert.Len(t, out, 2)
	for _, rec := range out {
		name, _ := rec.Get("name")
		assert.Equal(t, "A", name.Str())
	}
}

func TestJoinLeftModeKeepsUnmatched(t *testing.T) {
	left := objs(t, `{"id":1}`, `{"id":2}`)
	right := objs(t, `{"id":1,"v":"x"}`)

	j, err := NewJoinOp(FromSlice(left), FromSlice(right), []string{"id"}, []string{"id"}, JoinLeft)
	require.NoError(t, err)
	out := drain(t, j)
	require.Len(t, out, 2)
	_, ok := out[1].Get("v")
	assert.False(t, ok)
}

func TestDistinctPreservesFirstSeenOrder(t *testing.T) {
	in := objs(t, `{"k":"a"}`, `{"k":"b"}`, `{"k":"a"}`)
	d := &DistinctOp{In: FromSlice(in)}
	out := drain(t, d)
	require.Len(t, out, 2)
	v0, _ := out[0].Get("k")
	v1, _ := out[1].Get("k")
	assert.Equal(t, "a", v0.Str())
	assert.Equal(t, "b", v1.Str())
}

func TestDistinctIdempotent(t *testing.T) {
	in := objs(t, `{"k":"a"}`, `{"k":"b"}`, `{"k":"a"}`)
	once := drain(t, &DistinctOp{In: FromSlice(in)})
	twice := drain(t, &DistinctOp{In: FromSlice(once)})
	require.Len(t, twice, len(once))
}

func TestSortIdempotentAndStable(t *testing.T) {
	in := objs(t, `{"v":4,"tag":"a"}`, `{"v":2,"tag":"b"}`, `{"v":2,"tag":"c"}`)
	s := &SortOp{In: FromSlice(in), Keys: []SortKey{{Path: "v"}}}
	rel, err := s.Build()
	require.NoError(t, err)
	out := drain(t, rel)
	require.Len(t, out, 3)
	v0, _ := out[0].Get("tag")
	v1, _ := out[1].Get("tag")
	assert.Equal(t, "b", v0.Str(), "ties broken by input order")
	assert.Equal(t, "c", v1.Str())

	s2 := &SortOp{In: FromSlice(out), Keys: []SortKey{{Path: "v"}}}
	rel2, err := s2.Build()
	require.NoError(t, err)
	out2 := drain(t, rel2)
	for i := range out {
		av, _ := out[i].Get("v")
		bv, _ := out2[i].Get("v")
		assert.True(t, value.Equal(av, bv))
	}
}

func TestUnionAssociativityAndNoDedup(t *testing.T) {
	a := objs(t, `{"k":1}`)
	b := objs(t, `{"k":1}`)
	c := objs(t, `{"k":2}`)

	ab := &UnionOp{Lhs: FromSlice(a), Rhs: FromSlice(b)}
	abc := &UnionOp{Lhs: ab, Rhs: FromSlice(c)}
	left := drain(t, abc)

	bc := &UnionOp{Lhs: FromSlice(b), Rhs: FromSlice(c)}
	abc2 := &UnionOp{Lhs: FromSlice(a), Rhs: bc}
	right := drain(t, abc2)

	assert.Len(t, left, 3)
	assert.Len(t, right, 3)
}

func TestIntersectionAndDifferenceMultisetLaws(t *testing.T) {
	a := objs(t, `{"k":1}`, `{"k":1}`, `{"k":2}`)
	b := objs(t, `{"k":1}`)

	inter := &IntersectionOp{A: FromSlice(a), B: FromSlice(b)}
	relI, err := inter.Build()
	require.NoError(t, err)
	assert.Len(t, drain(t, relI), 1)

	diff := &DifferenceOp{A: FromSlice(a), B: FromSlice(b)}
	relD, err := diff.Build()
	require.NoError(t, err)
	assert.Len(t, drain(t, relD), 2)
}

func TestProductCartesian(t *testing.T) {
	a := objs(t, `{"a":1}`, `{"a":2}`)
	b := objs(t, `{"b":1}`, `{"b":2}`, `{"b":3}`)
	p := &ProductOp{A: FromSlice(a), B: FromSlice(b)}
	out := drain(t, p)
	assert.Len(t, out, 6)
}

func TestExplodePassThroughOnNonArray(t *testing.T) {
	in := objs(t, `{"tags":["x","y"]}`, `{"tags":"notarray"}`)
	var warned bool
	e := &ExplodeOp{In: FromSlice(in), Path: "tags", OnWarning: func(string) { warned = true }}
	out := drain(t, e)
	require.Len(t, out, 3)
	assert.True(t, warned)
	v0, _ := out[0].Get("tags")
	assert.Equal(t, "x", v0.Str())
}

func TestTakeEarlyTermination(t *testing.T) {
	in := objs(t, `{"v":1}`, `{"v":2}`, `{"v":3}`)
	tk := &TakeOp{In: FromSlice(in), N: 2}
	out := drain(t, tk)
	assert.Len(t, out, 2)
}

func TestSkip(t *testing.T) {
	in := objs(t, `{"v":1}`, `{"v":2}`, `{"v":3}`)
	sk := &SkipOp{In: FromSlice(in), N: 1}
	out := drain(t, sk)
	assert.Len(t, out, 2)
}

func TestRenameCollisionRejected(t *testing.T) {
	_, err := NewRenameOp(FromSlice(nil), []RenameMapping{{From: "a", To: "x"}, {From: "b", To: "x"}})
	assert.Error(t, err)
}

func TestRenameAppliesMapping(t *testing.T) {
	in := objs(t, `{"a":1,"b":2}`)
	r, err := NewRenameOp(FromSlice(in), []RenameMapping{{From: "a", To: "c"}})
	require.NoError(t, err)
	out := drain(t, r)
	require.Len(t, out, 1)
	_, ok := out[0].Get("a")
	assert.False(t, ok)
	v, ok := out[0].Get("c")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())
}

func TestEmptyInputYieldsEmptyOutput(t *testing.T) {
	sel := &SelectOp{In: FromSlice(nil), Pred: mustFilter(t, "true")}
	assert.Empty(t, drain(t, sel))
}

func mustFilter(t *testing.T, src string) *expr.Filter {
	t.Helper()
	f, err := expr.CompileFilter(src)
	require.NoError(t, err)
	return f
}
