package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/expr"
	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

func ints(vs ...int64) []*value.Object {
	out := make([]*value.Object, len(vs))
	for i, v := range vs {
		o := value.NewObject(1)
		o.Set("v", value.Int(v))
		out[i] = o
	}
	return out
}

func TestThenPreservesOrderAndIsImmutable(t *testing.T) {
	base := New()
	f, err := expr.CompileFilter("v > 1")
	require.NoError(t, err)
	withFilter := base.Then(func(in relop.Relation) (relop.Relation, error) {
		return &relop.SelectOp{In: in, Pred: f}, nil
	})
	// base itself must remain the empty pipeline.
	out, err := base.Eager(relop.FromSlice(ints(1, 2, 3)))
	require.NoError(t, err)
	assert.Len(t, out, 3)

	out2, err := withFilter.Eager(relop.FromSlice(ints(1, 2, 3)))
	require.NoError(t, err)
	assert.Len(t, out2, 2)
}

func TestBatchAndFlattenRoundTrip(t *testing.T) {
	p := New().Then(Batch(2)).Then(Flatten())
	out, err := p.Eager(relop.FromSlice(ints(1, 2, 3, 4, 5)))
	require.NoError(t, err)
	require.Len(t, out, 5)
	v0, _ := out[0].Get("v")
	assert.Equal(t, int64(1), v0.Int())
}

func TestTopReturnsDescendingSlice(t *testing.T) {
	p := New().Then(Top(2, "v", false))
	out, err := p.Eager(relop.FromSlice(ints(3, 1, 4, 1, 5)))
	require.NoError(t, err)
	require.Len(t, out, 2)
	v0, _ := out[0].Get("v")
	v1, _ := out[1].Get("v")
	assert.Equal(t, int64(5), v0.Int())
	assert.Equal(t, int64(4), v1.Int())
}

func TestTopAscendingReturnsSmallest(t *testing.T) {
	p := New().Then(Top(1, "v", true))
	out, err := p.Eager(relop.FromSlice(ints(3, 1, 4)))
	require.NoError(t, err)
	require.Len(t, out, 1)
	v0, _ := out[0].Get("v")
	assert.Equal(t, int64(1), v0.Int())
}
