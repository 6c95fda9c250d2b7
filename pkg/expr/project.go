package expr

import (
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

// ProjectionField is one compiled field of a project operator's field
// list (spec.md §4.2 "Projection expressions"): either a bare path
// (output key = the path as-is) or name=expr (output key = name, value =
// expr evaluated over the record).
type ProjectionField struct {
	OutputKey string
	BarePath  string // set when this field is a bare path, "" otherwise
	Expr      *Filter
}

// CompileProjection parses a comma-separated field list into
// ProjectionFields. Repeated output names are a PipelineError, per
// "Repeated names are an error."
func CompileProjection(fields []string) ([]ProjectionField, error) {
	out := make([]ProjectionField, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, raw := range fields {
		f := strings.TrimSpace(raw)
		if f == "" {
			continue
		}
		var pf ProjectionField
		if eq := strings.Index(f, "="); eq >= 0 && !looksLikeComparison(f, eq) {
			name := strings.TrimSpace(f[:eq])
			exprSrc := strings.TrimSpace(f[eq+1:])
			if name == "" {
				return nil, jqerr.New(jqerr.ExpressionError, "projection field name must not be empty")
			}
			compiled, err := CompileFilter(exprSrc)
			if err != nil {
				return nil, err
			}
			pf = ProjectionField{OutputKey: name, Expr: compiled}
		} else {
			compiled, err := CompileFilter(f)
			if err != nil {
				return nil, err
			}
			if _, ok := compiled.root.(pathNode); !ok {
				return nil, jqerr.Newf(jqerr.ExpressionError, "projection field %q must be a bare path or name=expr", f)
			}
			pf = ProjectionField{OutputKey: f, BarePath: f, Expr: compiled}
		}
		if seen[pf.OutputKey] {
			return nil, jqerr.Newf(jqerr.PipelineError, "duplicate projection output name: %s", pf.OutputKey)
		}
		seen[pf.OutputKey] = true
		out = append(out, pf)
	}
	return out, nil
}

// looksLikeComparison guards against splitting "a == b" on its first '='
// by requiring the char after '=' not itself be '=' and the char before
// not be one of the comparison-operator prefixes.
func looksLikeComparison(s string, eq int) bool {
	if eq+1 < len(s) && s[eq+1] == '=' {
		return true
	}
	if eq > 0 {
		switch s[eq-1] {
		case '!', '<', '>', '=':
			return true
		}
	}
	return false
}

// Eval evaluates one projection field against rec, returning its output
// value and whether it was absent (absent paths serialize to an omitted
// key by default, per §4.4 "project").
func (pf ProjectionField) Eval(rec *value.Object) (value.Value, bool, error) {
	return pf.Expr.Eval(rec)
}
