package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/value"
)

func rec(t *testing.T, json string) *value.Object {
	t.Helper()
	r, err := value.DecodeRecord([]byte(json))
	require.NoError(t, err)
	return r
}

func TestFilterComparisonAndArithmetic(t *testing.T) {
	f, err := CompileFilter("a > 1 and b == \"y\"")
	require.NoError(t, err)

	ok, err := f.Matches(rec(t, `{"a":2,"b":"y"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Matches(rec(t, `{"a":1,"b":"y"}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterPrecedenceAndOr(t *testing.T) {
	f, err := CompileFilter("a == 1 or a == 2 and b == true")
	require.NoError(t, err)
	ok, err := f.Matches(rec(t, `{"a":2,"b":true}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterNestedPath(t *testing.T) {
	f, err := CompileFilter("user.profile.city == \"NYC\"")
	require.NoError(t, err)
	ok, err := f.Matches(rec(t, `{"user":{"profile":{"city":"NYC"}}}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterDivisionByZeroIsEvalError(t *testing.T) {
	f, err := CompileFilter("10 / x > 0")
	require.NoError(t, err)
	_, err = f.Matches(rec(t, `{"x":0}`))
	assert.Error(t, err)
}

func TestFilterAbsentEqualsNull(t *testing.T) {
	f, err := CompileFilter("missing == null")
	require.NoError(t, err)
	ok, err := f.Matches(rec(t, `{"a":1}`))
	require.NoError(t, err)
	assert.True(t, ok, "absent == null must be true")

	f2, err := CompileFilter("missing == 5")
	require.NoError(t, err)
	ok, err = f2.Matches(rec(t, `{"a":1}`))
	require.NoError(t, err)
	assert.False(t, ok, "any other comparison with absent must be false")

	f3, err := CompileFilter("missing != null")
	require.NoError(t, err)
	ok, err = f3.Matches(rec(t, `{"a":1}`))
	require.NoError(t, err)
	assert.False(t, ok, "absent != null is 'any other comparison' and so is false")
}

func TestFilterBuiltinFunctions(t *testing.T) {
	f, err := CompileFilter(`startswith(lower(name), "al")`)
	require.NoError(t, err)
	ok, err := f.Matches(rec(t, `{"name":"ALICE"}`))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilterUnknownFunctionRejected(t *testing.T) {
	_, err := CompileFilter(`exec("ls")`)
	assert.Error(t, err, "the function set is fixed and small; unknown calls must fail to compile")
}

func TestFilterCaretDiagnostic(t *testing.T) {
	_, err := CompileFilter("a ===")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "^")
}

func TestCompileProjectionBareAndNamed(t *testing.T) {
	fields, err := CompileProjection([]string{"b", "total=a+1"})
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "b", fields[0].OutputKey)
	assert.Equal(t, "total", fields[1].OutputKey)

	r := rec(t, `{"a":1,"b":"x"}`)
	v, absent, err := fields[1].Eval(r)
	require.NoError(t, err)
	assert.False(t, absent)
	assert.Equal(t, int64(2), v.Int())
}

func TestCompileProjectionDuplicateNamesRejected(t *testing.T) {
	_, err := CompileProjection([]string{"a", "a"})
	assert.Error(t, err)
}

func TestAdvancedQueryTruthiness(t *testing.T) {
	q, err := CompileAdvancedQuery("a > `1`")
	require.NoError(t, err)
	ok, err := q.Matches(rec(t, `{"a":2}`))
	require.NoError(t, err)
	assert.True(t, ok)
}
