package main

import (
	"flag"
	"io"
	"strings"

	"github.com/jqrel/jqrel/pkg/expr"
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/relop"
)

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func runSelect(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	jmes := fs.Bool("jmespath", false, "compile EXPR as a JMESPath query instead of the filter sub-language")
	lenient := fs.Bool("lenient", false, "drop rows that fail evaluation instead of aborting")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing select flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "select requires EXPR")
	}
	exprSrc, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	var pred relop.Predicate
	if *jmes {
		pred, err = expr.CompileAdvancedQuery(exprSrc)
	} else {
		pred, err = expr.CompileFilter(exprSrc)
	}
	if err != nil {
		return err
	}

	policy := relop.Strict
	if *lenient {
		policy = relop.Lenient
	}
	op := &relop.SelectOp{In: in, Pred: pred, Policy: policy}
	return writeAll(op, stdout)
}

func runProject(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	flatten := fs.Bool("flatten", false, "emit dotted output keys as nested structure instead of flat literal keys")
	nullAbsent := fs.Bool("null-for-absent", false, "materialize absent fields as null instead of omitting them")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing project flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "project requires FIELDS")
	}
	fieldsSrc, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	fields, err := expr.CompileProjection(splitCSV(fieldsSrc))
	if err != nil {
		return err
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	op := &relop.ProjectOp{In: in, Fields: fields, NullForAbsent: *nullAbsent, Nest: *flatten}
	return writeAll(op, stdout)
}

func parseRenameMap(spec string) ([]relop.RenameMapping, error) {
	pairs := splitCSV(spec)
	out := make([]relop.RenameMapping, 0, len(pairs))
	for _, p := range pairs {
		eq := strings.Index(p, "=")
		if eq < 0 {
			return nil, jqerr.Newf(jqerr.UsageError, "rename mapping %q must be from=to", p)
		}
		out = append(out, relop.RenameMapping{
			From: strings.TrimSpace(p[:eq]),
			To:   strings.TrimSpace(p[eq+1:]),
		})
	}
	return out, nil
}

func runRename(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing rename flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "rename requires MAP")
	}
	mapSrc, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	mappings, err := parseRenameMap(mapSrc)
	if err != nil {
		return err
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	op, err := relop.NewRenameOp(in, mappings)
	if err != nil {
		return err
	}
	return writeAll(op, stdout)
}

func runDistinct(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("distinct", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing distinct flags")
	}
	file := ""
	if rest := fs.Args(); len(rest) > 0 {
		file = rest[0]
	}
	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	return writeAll(&relop.DistinctOp{In: in}, stdout)
}

func runExplode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("explode", flag.ContinueOnError)
	drop := fs.Bool("drop-on-non-array", false, "drop the record instead of passing it through unchanged when Path isn't an array")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing explode flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "explode requires PATH")
	}
	path, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	policy := relop.PassThroughOnNonArray
	if *drop {
		policy = relop.DropOnNonArray
	}
	op := &relop.ExplodeOp{
		In:     in,
		Path:   path,
		Policy: policy,
		OnWarning: func(msg string) {
			log.Warn(msg)
		},
	}
	return writeAll(op, stdout)
}

func runSort(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("sort", flag.ContinueOnError)
	desc := fs.Bool("desc", false, "reverse every key's sort direction")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing sort flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "sort requires KEYS")
	}
	keysSrc, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	var keys []relop.SortKey
	for _, k := range splitCSV(keysSrc) {
		keys = append(keys, relop.SortKey{Path: k, Desc: *desc})
	}
	op := &relop.SortOp{In: in, Keys: keys}
	built, err := op.Build()
	if err != nil {
		return err
	}
	return writeAll(built, stdout)
}
