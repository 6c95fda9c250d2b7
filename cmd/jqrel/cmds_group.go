package main

import (
	"flag"
	"io"
	"strings"

	"github.com/jqrel/jqrel/pkg/group"
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/relop"
)

// aggSpecFlag collects repeated --agg name:fn:path flags into AggFields.
type aggSpecFlag struct{ fields []group.AggField }

func (a *aggSpecFlag) String() string { return "" }

func (a *aggSpecFlag) Set(s string) error {
	for _, spec := range strings.Split(s, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) < 2 {
			return jqerr.Newf(jqerr.UsageError, "agg spec %q must be name:fn[:path]", spec)
		}
		f := group.AggField{Name: parts[0], Fn: parts[1]}
		if len(parts) == 3 {
			f.ArgPath = parts[2]
		}
		if _, ok := group.Lookup(f.Fn); !ok {
			return jqerr.Newf(jqerr.UsageError, "unknown aggregator %q", f.Fn)
		}
		a.fields = append(a.fields, f)
	}
	return nil
}

func runGroupBy(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("groupby", flag.ContinueOnError)
	var aggs aggSpecFlag
	fs.Var(&aggs, "agg", "name:fn[:path], repeatable and/or comma-separated")
	file := fs.String("file", "", "input file, defaults to positional or stdin")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing groupby flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "groupby requires KEYS")
	}
	keys := splitCSV(rest[0])
	if err := fs.Parse(rest[1:]); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing groupby flags")
	}
	rest = fs.Args()
	inFile := *file
	if inFile == "" && len(rest) > 0 {
		inFile = rest[0]
	}

	in, closer, err := openInput(inFile, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := (&group.GroupByOp{In: group.Ungrouped(in), Keys: keys}).Build()
	if err != nil {
		return err
	}

	if len(aggs.fields) == 0 {
		return writeAll(&group.EmbeddedAdapter{In: src}, stdout)
	}
	out, err := (&group.AggregateOp{In: src, Fields: aggs.fields}).Build()
	if err != nil {
		return err
	}
	return writeAll(out, stdout)
}

func runAgg(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("agg", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing agg flags")
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return jqerr.New(jqerr.UsageError, "agg requires SPEC")
	}
	specSrc, file := rest[0], ""
	if len(rest) > 1 {
		file = rest[1]
	}

	var flags aggSpecFlag
	if err := flags.Set(specSrc); err != nil {
		return err
	}
	if len(flags.fields) == 0 {
		return jqerr.New(jqerr.UsageError, "agg requires at least one name:fn[:path] entry")
	}

	in, closer, err := openInput(file, stdin, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	recs, err := relop.Materialize(in)
	if err != nil {
		return err
	}
	grouped := make([]*group.GroupedRecord, len(recs))
	hasMeta := false
	for i, rec := range recs {
		grouped[i] = group.ExtractMetadata(rec)
		hasMeta = hasMeta || grouped[i].Info != nil
	}
	out, err := (&group.AggregateOp{In: group.AsRelation(grouped), Fields: flags.fields, WholeRelation: !hasMeta}).Build()
	if err != nil {
		return err
	}
	return writeAll(out, stdout)
}
