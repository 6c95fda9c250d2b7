package expr

import "github.com/jqrel/jqrel/pkg/value"

// node is a compiled AST node. Evaluating against a record does not
// allocate a new record, per spec.md §4.2 "Compilation".
type node interface {
	eval(rec *value.Object) (evalResult, error)
}

// evalResult carries an evaluated Value plus the absent flag, since
// Absent is distinct from null and participates specially in
// comparisons (§4.2).
type evalResult struct {
	val    value.Value
	absent bool
}

func present(v value.Value) evalResult { return evalResult{val: v} }
func absentResult() evalResult         { return evalResult{absent: true} }

type litNode struct{ v value.Value }

func (n litNode) eval(*value.Object) (evalResult, error) { return present(n.v), nil }

// pathNode holds the path pre-split into key tokens at compile time, so
// evaluation never re-splits a string per record.
type pathNode struct{ tokens []string }

func (n pathNode) eval(rec *value.Object) (evalResult, error) {
	v, ok := value.GetPathTokens(rec, n.tokens)
	if !ok {
		return absentResult(), nil
	}
	return present(v), nil
}

type unaryMinusNode struct{ x node }

type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
	opMod
)

type arithNode struct {
	op   binOp
	l, r node
}

type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

type cmpNode struct {
	op   cmpOp
	l, r node
}

type logOp int

const (
	logAnd logOp = iota
	logOr
	logNot
)

type logNode struct {
	op   logOp
	l, r node // r is nil for logNot
}

type funcNode struct {
	name string
	args []node
}
