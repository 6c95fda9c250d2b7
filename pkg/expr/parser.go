package expr

import (
	"fmt"
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/value"
)

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Pos: p.cur().pos, Source: p.src}
}

// parseExpr parses the full grammar of spec.md §4.2 into a node tree.
func parseExpr(src string) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, p.errf("unexpected trailing input")
	}
	return n, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = logNode{op: logOr, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = logNode{op: logAnd, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.cur().kind == tokNot {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return logNode{op: logNot, l: inner}, nil
	}
	return p.parseCmp()
}

func (p *parser) parseCmp() (node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	var op cmpOp
	switch p.cur().kind {
	case tokEq:
		op = cmpEq
	case tokNe:
		op = cmpNe
	case tokLt:
		op = cmpLt
	case tokLe:
		op = cmpLe
	case tokGt:
		op = cmpGt
	case tokGe:
		op = cmpGe
	default:
		return left, nil
	}
	p.advance()
	right, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	return cmpNode{op: op, l: left, r: right}, nil
}

func (p *parser) parseAdd() (node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPlus || p.cur().kind == tokMinus {
		op := opAdd
		if p.cur().kind == tokMinus {
			op = opSub
		}
		p.advance()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = arithNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseMul() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokStar || p.cur().kind == tokSlash || p.cur().kind == tokPercent {
		var op binOp
		switch p.cur().kind {
		case tokStar:
			op = opMul
		case tokSlash:
			op = opDiv
		case tokPercent:
			op = opMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = arithNode{op: op, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.cur().kind == tokMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryMinusNode{x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.cur()
	switch t.kind {
	case tokNumber:
		p.advance()
		if t.isInt {
			return litNode{v: value.Int(t.intV)}, nil
		}
		return litNode{v: value.Float(t.num)}, nil
	case tokString:
		p.advance()
		return litNode{v: value.String(t.text)}, nil
	case tokTrue:
		p.advance()
		return litNode{v: value.Bool(true)}, nil
	case tokFalse:
		p.advance()
		return litNode{v: value.Bool(false)}, nil
	case tokNull:
		p.advance()
		return litNode{v: value.Null()}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, p.errf("expected ')'")
		}
		p.advance()
		return inner, nil
	case tokIdent:
		return p.parseIdentOrCall()
	default:
		return nil, p.errf("unexpected token")
	}
}

func (p *parser) parseIdentOrCall() (node, error) {
	name := p.advance().text
	if p.cur().kind == tokLParen {
		p.advance()
		var args []node
		if p.cur().kind != tokRParen {
			for {
				arg, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur().kind == tokComma {
					p.advance()
					continue
				}
				break
			}
		}
		if p.cur().kind != tokRParen {
			return nil, p.errf("expected ')' after call arguments")
		}
		p.advance()
		if !builtinNames[strings.ToLower(name)] {
			return nil, &ParseError{Message: "unknown function: " + name, Pos: 0, Source: p.src}
		}
		return funcNode{name: strings.ToLower(name), args: args}, nil
	}
	tokens := []string{name}
	for p.cur().kind == tokDot {
		p.advance()
		if p.cur().kind != tokIdent {
			return nil, p.errf("expected identifier after '.'")
		}
		tokens = append(tokens, p.advance().text)
	}
	return pathNode{tokens: tokens}, nil
}

// Filter is a compiled filter expression (spec.md §4.2 item 1). Parsed
// once; evaluating it against many records allocates nothing beyond the
// result value itself.
type Filter struct {
	root node
	src  string
}

// CompileFilter parses the small boolean/arithmetic filter sub-language.
func CompileFilter(src string) (*Filter, error) {
	n, err := parseExpr(src)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return nil, jqerr.Wrap(jqerr.ExpressionError, pe, pe.Error())
		}
		return nil, jqerr.Wrap(jqerr.ExpressionError, err, err.Error())
	}
	return &Filter{root: n, src: src}, nil
}

// Matches reports whether rec passes the filter. A division-by-zero or
// other EvalError is returned to the caller, which applies the
// strict/lenient policy of §7.
func (f *Filter) Matches(rec *value.Object) (bool, error) {
	r, err := f.root.eval(rec)
	if err != nil {
		return false, err
	}
	return truthy(r), nil
}

// Source returns the original expression text, used for diagnostics.
func (f *Filter) Source() string { return f.src }

// Eval evaluates the compiled expression to a raw Value, for use by
// projection's "name=expr" form (§4.2) which is not restricted to a
// boolean result the way select's top-level expression is.
func (f *Filter) Eval(rec *value.Object) (value.Value, bool, error) {
	r, err := f.root.eval(rec)
	if err != nil {
		return value.Value{}, false, err
	}
	return r.val, r.absent, nil
}
