package expr

import (
	"math"
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

// builtinNames is the fixed, small function set of spec.md §4.2
// "Safety": no file, process, or arbitrary-state access.
var builtinNames = map[string]bool{
	"lower":      true,
	"upper":      true,
	"startswith": true,
	"endswith":   true,
	"contains":   true,
	"length":     true,
	"coalesce":   true,
	"abs":        true,
	"round":      true,
}

func callBuiltin(name string, args []evalResult) (evalResult, error) {
	switch name {
	case "lower":
		s, err := argString(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		return present(value.String(strings.ToLower(s))), nil
	case "upper":
		s, err := argString(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		return present(value.String(strings.ToUpper(s))), nil
	case "startswith":
		a, err := argString(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		b, err := argString(name, args, 1)
		if err != nil {
			return evalResult{}, err
		}
		return present(value.Bool(strings.HasPrefix(a, b))), nil
	case "endswith":
		a, err := argString(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		b, err := argString(name, args, 1)
		if err != nil {
			return evalResult{}, err
		}
		return present(value.Bool(strings.HasSuffix(a, b))), nil
	case "contains":
		a, err := argString(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		b, err := argString(name, args, 1)
		if err != nil {
			return evalResult{}, err
		}
		return present(value.Bool(strings.Contains(a, b))), nil
	case "length":
		if len(args) != 1 {
			return evalResult{}, jqerr.New(jqerr.EvalError, "length() takes exactly one argument")
		}
		if args[0].absent {
			return absentResult(), nil
		}
		switch args[0].val.Kind() {
		case value.KindString:
			return present(value.Int(int64(len(args[0].val.Str())))), nil
		case value.KindArray:
			return present(value.Int(int64(len(args[0].val.Arr())))), nil
		case value.KindObject:
			return present(value.Int(int64(args[0].val.Obj().Len()))), nil
		default:
			return evalResult{}, jqerr.New(jqerr.EvalError, "length() requires a string, array or object")
		}
	case "coalesce":
		for _, a := range args {
			if a.absent || a.val.IsNull() {
				continue
			}
			return present(a.val), nil
		}
		return absentResult(), nil
	case "abs":
		v, err := argNumeric(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		if v.Kind() == value.KindInt {
			i := v.Int()
			if i < 0 {
				i = -i
			}
			return present(value.Int(i)), nil
		}
		return present(value.Float(math.Abs(v.Float()))), nil
	case "round":
		v, err := argNumeric(name, args, 0)
		if err != nil {
			return evalResult{}, err
		}
		if v.Kind() == value.KindInt {
			return present(v), nil
		}
		return present(value.Float(math.Round(v.Float()))), nil
	default:
		return evalResult{}, jqerr.Newf(jqerr.ExpressionError, "unknown function: %s", name)
	}
}

func argString(fn string, args []evalResult, i int) (string, error) {
	if i >= len(args) {
		return "", jqerr.Newf(jqerr.EvalError, "%s() requires at least %d argument(s)", fn, i+1)
	}
	a := args[i]
	if a.absent {
		return "", jqerr.Newf(jqerr.EvalError, "%s() argument %d is absent", fn, i)
	}
	if a.val.Kind() != value.KindString {
		return "", jqerr.Newf(jqerr.EvalError, "%s() argument %d must be a string", fn, i)
	}
	return a.val.Str(), nil
}

func argNumeric(fn string, args []evalResult, i int) (value.Value, error) {
	if i >= len(args) {
		return value.Value{}, jqerr.Newf(jqerr.EvalError, "%s() requires at least %d argument(s)", fn, i+1)
	}
	a := args[i]
	if a.absent || !a.val.IsNumeric() {
		return value.Value{}, jqerr.Newf(jqerr.EvalError, "%s() argument %d must be numeric", fn, i)
	}
	return a.val, nil
}
