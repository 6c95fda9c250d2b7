package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

func TestBuildChoosesStreamWhenNoMaterializing(t *testing.T) {
	p := Build(Request{Ops: []OpDesc{{Name: "select", Class: Streaming}, {Name: "distinct", Class: BoundedStateful}}})
	assert.Equal(t, ModeStream, p.Mode)
	assert.Empty(t, p.Warnings)
}

func TestBuildChoosesMaterializeWhenAnyMaterializing(t *testing.T) {
	p := Build(Request{Ops: []OpDesc{{Name: "select", Class: Streaming}, {Name: "sort", Class: Materializing}}})
	assert.Equal(t, ModeMaterialize, p.Mode)
}

func TestBuildChoosesWindowedAndWarns(t *testing.T) {
	p := Build(Request{Ops: []OpDesc{{Name: "sort", Class: Materializing}}, Window: 100})
	assert.Equal(t, ModeWindowed, p.Mode)
	assert.Equal(t, 100, p.Window)
	require.Len(t, p.Warnings, 1)
}

func TestBuildWarnsOnForceStreamFallback(t *testing.T) {
	p := Build(Request{Ops: []OpDesc{{Name: "join", Class: Materializing}}, ForceStream: true})
	assert.Equal(t, ModeMaterialize, p.Mode)
	require.Len(t, p.Warnings, 1)
}

func TestBuildWarnsOnMemoryIntensiveLargeInput(t *testing.T) {
	p := Build(Request{
		Ops:                   []OpDesc{{Name: "product", Class: Materializing, MemoryIntensive: true}},
		EstimatedInputRecords: 2_000_000,
	})
	require.Len(t, p.Warnings, 1)
}

func TestRunWindowedConcatenatesPerWindowResults(t *testing.T) {
	recs := make([]*value.Object, 0, 5)
	for i := 0; i < 5; i++ {
		o := value.NewObject(1)
		o.Set("v", value.Int(int64(i)))
		recs = append(recs, o)
	}
	out, err := RunWindowed(relop.FromSlice(recs), 2, func(r relop.Relation) (relop.Relation, error) {
		return r, nil
	})
	require.NoError(t, err)
	got, err := relop.Materialize(out)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
