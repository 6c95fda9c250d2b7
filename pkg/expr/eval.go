package expr

import (
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

func truthy(r evalResult) bool {
	if r.absent {
		return false
	}
	switch r.val.Kind() {
	case value.KindNull:
		return false
	case value.KindBool:
		return r.val.Bool()
	case value.KindInt:
		return r.val.Int() != 0
	case value.KindFloat:
		return r.val.Float() != 0
	case value.KindString:
		return r.val.Str() != ""
	case value.KindArray:
		return len(r.val.Arr()) > 0
	case value.KindObject:
		return r.val.Obj().Len() > 0
	default:
		return false
	}
}

func (n unaryMinusNode) eval(rec *value.Object) (evalResult, error) {
	r, err := n.x.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	if r.absent || !r.val.IsNumeric() {
		return evalResult{}, jqerr.New(jqerr.EvalError, "unary '-' requires a numeric operand")
	}
	if r.val.Kind() == value.KindInt {
		return present(value.Int(-r.val.Int())), nil
	}
	return present(value.Float(-r.val.Float())), nil
}

func (n arithNode) eval(rec *value.Object) (evalResult, error) {
	l, err := n.l.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	r, err := n.r.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	if l.absent || r.absent || !l.val.IsNumeric() || !r.val.IsNumeric() {
		return evalResult{}, jqerr.New(jqerr.EvalError, "arithmetic requires two numeric operands")
	}
	bothInt := l.val.Kind() == value.KindInt && r.val.Kind() == value.KindInt
	if bothInt {
		li, ri := l.val.Int(), r.val.Int()
		switch n.op {
		case opAdd:
			return present(value.Int(li + ri)), nil
		case opSub:
			return present(value.Int(li - ri)), nil
		case opMul:
			return present(value.Int(li * ri)), nil
		case opDiv:
			if ri == 0 {
				return evalResult{}, jqerr.New(jqerr.EvalError, "division by zero")
			}
			// division always yields a float per the scenario in §8 ("5.0", "2.0")
			return present(value.Float(float64(li) / float64(ri))), nil
		case opMod:
			if ri == 0 {
				return evalResult{}, jqerr.New(jqerr.EvalError, "modulo by zero")
			}
			return present(value.Int(li % ri)), nil
		}
	}
	lf, rf := l.val.AsFloat(), r.val.AsFloat()
	switch n.op {
	case opAdd:
		return present(value.Float(lf + rf)), nil
	case opSub:
		return present(value.Float(lf - rf)), nil
	case opMul:
		return present(value.Float(lf * rf)), nil
	case opDiv:
		if rf == 0 {
			return evalResult{}, jqerr.New(jqerr.EvalError, "division by zero")
		}
		return present(value.Float(lf / rf)), nil
	case opMod:
		if rf == 0 {
			return evalResult{}, jqerr.New(jqerr.EvalError, "modulo by zero")
		}
		return present(value.Float(modFloat(lf, rf))), nil
	}
	return evalResult{}, jqerr.New(jqerr.EvalError, "unsupported arithmetic operator")
}

func modFloat(a, b float64) float64 {
	for a >= b {
		a -= b
	}
	return a
}

func (n cmpNode) eval(rec *value.Object) (evalResult, error) {
	l, err := n.l.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	r, err := n.r.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	if l.absent || r.absent {
		if n.op == cmpEq {
			otherIsNull := (l.absent && !r.absent && r.val.IsNull()) ||
				(r.absent && !l.absent && l.val.IsNull()) ||
				(l.absent && r.absent)
			return present(value.Bool(otherIsNull)), nil
		}
		return present(value.Bool(false)), nil
	}
	c := value.Compare(l.val, r.val)
	switch n.op {
	case cmpEq:
		return present(value.Bool(value.Equal(l.val, r.val))), nil
	case cmpNe:
		return present(value.Bool(!value.Equal(l.val, r.val))), nil
	case cmpLt:
		return present(value.Bool(c < 0)), nil
	case cmpLe:
		return present(value.Bool(c <= 0)), nil
	case cmpGt:
		return present(value.Bool(c > 0)), nil
	case cmpGe:
		return present(value.Bool(c >= 0)), nil
	default:
		return evalResult{}, jqerr.New(jqerr.EvalError, "unsupported comparison operator")
	}
}

func (n logNode) eval(rec *value.Object) (evalResult, error) {
	l, err := n.l.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	if n.op == logNot {
		return present(value.Bool(!truthy(l))), nil
	}
	lt := truthy(l)
	if n.op == logAnd && !lt {
		return present(value.Bool(false)), nil
	}
	if n.op == logOr && lt {
		return present(value.Bool(true)), nil
	}
	r, err := n.r.eval(rec)
	if err != nil {
		return evalResult{}, err
	}
	rt := truthy(r)
	if n.op == logAnd {
		return present(value.Bool(lt && rt)), nil
	}
	return present(value.Bool(lt || rt)), nil
}

func (n funcNode) eval(rec *value.Object) (evalResult, error) {
	args := make([]evalResult, len(n.args))
	for i, a := range n.args {
		r, err := a.eval(rec)
		if err != nil {
			return evalResult{}, err
		}
		args[i] = r
	}
	return callBuiltin(n.name, args)
}
