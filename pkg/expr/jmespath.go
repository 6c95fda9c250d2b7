package expr

import (
	"github.com/jmespath/go-jmespath"
	"github.com/pkg/errors"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

// AdvancedQuery is the opt-in JMESPath-compatible sub-language of §4.2
// item 2, backed by github.com/jmespath/go-jmespath (a direct dependency
// of grafana/loki's query path, per SPEC_FULL.md's domain stack).
type AdvancedQuery struct {
	compiled *jmespath.JMESPath
	src      string
}

// CompileAdvancedQuery parses src as a JMESPath expression.
func CompileAdvancedQuery(src string) (*AdvancedQuery, error) {
	jp, err := jmespath.Compile(src)
	if err != nil {
		return nil, jqerr.Wrap(jqerr.ExpressionError, err, "invalid jmespath expression")
	}
	return &AdvancedQuery{compiled: jp, src: src}, nil
}

// Matches reports whether rec passes the query: the record passes iff
// the expression yields a truthy value, using JMESPath's own truthiness
// rule (false, null, "", [], {} are falsy; zero and every other value —
// including the number 0 — are truthy).
func (q *AdvancedQuery) Matches(rec *value.Object) (bool, error) {
	result, err := q.compiled.Search(toInterface(value.FromObject(rec)))
	if err != nil {
		return false, errors.Wrap(err, "jmespath evaluation failed")
	}
	return jmesTruthy(result), nil
}

func jmesTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// toInterface converts a value.Value into the plain any tree go-jmespath
// expects (map[string]any / []any / string / float64 / bool / nil).
func toInterface(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindInt:
		return float64(v.Int())
	case value.KindFloat:
		return v.Float()
	case value.KindString:
		return v.Str()
	case value.KindArray:
		arr := v.Arr()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = toInterface(e)
		}
		return out
	case value.KindObject:
		obj := v.Obj()
		out := make(map[string]any, obj.Len())
		obj.Range(func(k string, val value.Value) bool {
			out[k] = toInterface(val)
			return true
		})
		return out
	default:
		return nil
	}
}
