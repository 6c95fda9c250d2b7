package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

func decode(t *testing.T, lines ...string) []*value.Object {
	t.Helper()
	out := make([]*value.Object, len(lines))
	for i, l := range lines {
		r, err := value.DecodeRecord([]byte(l))
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestInferBasicTypesAndRequired(t *testing.T) {
	recs := decode(t,
		`{"a":1,"b":"x"}`,
		`{"a":2.5,"b":"y"}`,
	)
	root, err := Infer(relop.FromSlice(recs))
	require.NoError(t, err)

	a := root.Properties["a"]
	assert.True(t, a.Types[TypeInteger])
	assert.True(t, a.Types[TypeNumber])
	assert.True(t, a.Required)
	assert.False(t, a.AbsentObserved)
}

func TestInferDetectsAbsentAndNull(t *testing.T) {
	recs := decode(t,
		`{"a":1}`,
		`{"a":null}`,
		`{"c":1}`,
	)
	root, err := Infer(relop.FromSlice(recs))
	require.NoError(t, err)

	a := root.Properties["a"]
	assert.True(t, a.NullObserved)
	assert.True(t, a.AbsentObserved, "a is missing from the third record")
	assert.False(t, a.Required)

	c := root.Properties["c"]
	assert.True(t, c.AbsentObserved, "c only appears starting from the third record")
	assert.False(t, c.Required)
}

func TestInferRecursesIntoObjectsAndUnionsArrayElements(t *testing.T) {
	recs := decode(t,
		`{"u":{"id":1},"tags":[1,"x"]}`,
	)
	root, err := Infer(relop.FromSlice(recs))
	require.NoError(t, err)

	u := root.Properties["u"]
	require.NotNil(t, u.Properties["id"])
	assert.True(t, u.Properties["id"].Types[TypeInteger])

	tags := root.Properties["tags"]
	require.NotNil(t, tags.Items)
	assert.True(t, tags.Items.Types[TypeInteger])
	assert.True(t, tags.Items.Types[TypeString])
}

func TestToValueIsDeterministic(t *testing.T) {
	recs := decode(t, `{"b":1,"a":2}`)
	root, err := Infer(relop.FromSlice(recs))
	require.NoError(t, err)
	v1 := root.ToValue()
	v2 := root.ToValue()
	assert.True(t, value.Equal(v1, v2))
}
