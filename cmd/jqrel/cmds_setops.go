package main

import (
	"flag"
	"io"
	"strings"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/relop"
)

// openFile opens a named file (not stdin — set operators take two named
// operands, so there is no single positional slot for "-").
func openFile(path string) (relop.Relation, io.Closer, error) {
	if path == "" || path == "-" {
		return nil, nil, jqerr.New(jqerr.UsageError, "expected a file path, not stdin")
	}
	return openInput(path, nil, false)
}

func runSetOp(cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing "+cmd+" flags")
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return jqerr.Newf(jqerr.UsageError, "%s requires exactly two operands A B", cmd)
	}

	a, aCloser, err := openFile(rest[0])
	if err != nil {
		return err
	}
	defer aCloser.Close()
	b, bCloser, err := openFile(rest[1])
	if err != nil {
		return err
	}
	defer bCloser.Close()

	var out relop.Relation
	switch cmd {
	case "union":
		out = &relop.UnionOp{Lhs: a, Rhs: b}
	case "intersection":
		out, err = (&relop.IntersectionOp{A: a, B: b}).Build()
	case "difference":
		out, err = (&relop.DifferenceOp{A: a, B: b}).Build()
	case "product":
		out = &relop.ProductOp{A: a, B: b}
	default:
		return jqerr.Newf(jqerr.UsageError, "unknown set operator %q", cmd)
	}
	if err != nil {
		return err
	}
	return writeAll(out, stdout)
}

func runJoin(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	on := fs.String("on", "", "comma-separated l_path=r_path key pairs")
	mode := fs.String("mode", "inner", "inner|left|right|outer")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing join flags")
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return jqerr.New(jqerr.UsageError, "join requires exactly two operands A B")
	}
	if strings.TrimSpace(*on) == "" {
		return jqerr.New(jqerr.UsageError, "join requires --on PAIRS")
	}

	var leftKeys, rightKeys []string
	for _, pair := range strings.Split(*on, ",") {
		pair = strings.TrimSpace(pair)
		eq := strings.Index(pair, "=")
		if eq < 0 {
			return jqerr.Newf(jqerr.UsageError, "join --on pair %q must be l_path=r_path", pair)
		}
		leftKeys = append(leftKeys, strings.TrimSpace(pair[:eq]))
		rightKeys = append(rightKeys, strings.TrimSpace(pair[eq+1:]))
	}

	joinMode, err := parseJoinMode(*mode)
	if err != nil {
		return err
	}

	left, leftCloser, err := openFile(rest[0])
	if err != nil {
		return err
	}
	defer leftCloser.Close()
	right, rightCloser, err := openFile(rest[1])
	if err != nil {
		return err
	}
	defer rightCloser.Close()

	op, err := relop.NewJoinOp(left, right, leftKeys, rightKeys, joinMode)
	if err != nil {
		return err
	}
	return writeAll(op, stdout)
}

func parseJoinMode(s string) (relop.JoinMode, error) {
	switch strings.ToLower(s) {
	case "inner", "":
		return relop.JoinInner, nil
	case "left":
		return relop.JoinLeft, nil
	case "right":
		return relop.JoinRight, nil
	case "outer":
		return relop.JoinOuter, nil
	default:
		return 0, jqerr.Newf(jqerr.UsageError, "unknown join mode %q", s)
	}
}
