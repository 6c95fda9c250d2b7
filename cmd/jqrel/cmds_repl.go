package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jqrel/jqrel/pkg/expr"
	"github.com/jqrel/jqrel/pkg/group"
	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/schema"
	"github.com/jqrel/jqrel/pkg/value"
	"github.com/jqrel/jqrel/pkg/workspace"
)

// runRepl enters workspace mode (§4.8): a line-oriented command loop
// over a single Workspace, reading from stdin rather than os.Args so the
// same "-" convention applies: each line names an operator and operates
// on the current dataset, registering its result as a new derived
// dataset and moving current onto it.
func runRepl(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	ws, err := workspace.New(os.TempDir(), log)
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(args) > 0 && args[0] != "" && args[0] != "-" {
		if _, err := ws.Load(args[0], "", false); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for {
		fmt.Fprintf(stdout, "%s> ", ws.Pwd())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := replEval(ws, line, stdout); err != nil {
			fmt.Fprintln(stderr, "jqrel:", err)
		}
	}
	return nil
}

func replEval(ws *workspace.Workspace, line string, stdout io.Writer) error {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "load":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "load requires PATH")
		}
		name := ""
		lenient := false
		for _, a := range rest[1:] {
			if a == "--lenient" {
				lenient = true
			} else {
				name = a
			}
		}
		ds, err := ws.Load(rest[0], name, lenient)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "loaded %s\n", ds.Name)
		return nil

	case "cd":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "cd requires NAME")
		}
		return ws.Cd(rest[0])

	case "pwd":
		fmt.Fprintln(stdout, ws.Pwd())
		return nil

	case "ls":
		name, limit := "", 0
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				limit = n
			} else {
				name = rest[0]
			}
		}
		if len(rest) > 1 {
			if n, err := strconv.Atoi(rest[1]); err == nil {
				limit = n
			}
		}
		if name == "" {
			name = ws.Pwd()
		}
		return ws.Ls(name, limit, stdout)

	case "info":
		name := ws.Pwd()
		if len(rest) > 0 {
			name = rest[0]
		}
		info, err := ws.Info(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s (%v): %d rows, %d bytes, keys=%v\n",
			info.Name, info.Kind, info.RowCount, info.SizeBytes, info.Keys)
		if info.Lenient {
			fmt.Fprintf(stdout, "  dropped %d malformed rows\n", info.Dropped)
		}
		return nil

	case "save":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "save requires PATH")
		}
		return ws.Save(rest[0])

	case "schema":
		ds, err := ws.Current()
		if err != nil {
			return err
		}
		rel, err := ds.Open()
		if err != nil {
			return err
		}
		defer rel.Close()
		node, err := schema.Infer(rel)
		if err != nil {
			return err
		}
		return writeAll(relop.FromSlice([]*value.Object{node.ToValue().Obj()}), stdout)

	case "select", "project", "rename", "distinct", "explode", "sort", "groupby", "agg":
		return replOperator(ws, cmd, rest)

	default:
		return jqerr.Newf(jqerr.UsageError, "unknown repl command %q", cmd)
	}
}

// replOperator runs one of the Operator Core / Grouping Engine verbs
// against the current dataset and registers the result as a new
// derived dataset, moving current onto it (§4.8's RunOperator contract).
func replOperator(ws *workspace.Workspace, cmd string, rest []string) error {
	ds, err := ws.Current()
	if err != nil {
		return err
	}
	in, err := ds.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	var out relop.Relation
	switch cmd {
	case "select":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "select requires EXPR")
		}
		pred, err := expr.CompileFilter(rest[0])
		if err != nil {
			return err
		}
		out = &relop.SelectOp{In: in, Pred: pred}

	case "project":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "project requires FIELDS")
		}
		fields, err := expr.CompileProjection(splitCSV(rest[0]))
		if err != nil {
			return err
		}
		out = &relop.ProjectOp{In: in, Fields: fields}

	case "rename":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "rename requires MAP")
		}
		mappings, err := parseRenameMap(rest[0])
		if err != nil {
			return err
		}
		op, err := relop.NewRenameOp(in, mappings)
		if err != nil {
			return err
		}
		out = op

	case "distinct":
		out = &relop.DistinctOp{In: in}

	case "explode":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "explode requires PATH")
		}
		out = &relop.ExplodeOp{In: in, Path: rest[0]}

	case "sort":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "sort requires KEYS")
		}
		var keys []relop.SortKey
		for _, k := range splitCSV(rest[0]) {
			keys = append(keys, relop.SortKey{Path: k})
		}
		op := &relop.SortOp{In: in, Keys: keys}
		out, err = op.Build()
		if err != nil {
			return err
		}

	case "groupby":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "groupby requires KEYS")
		}
		src, err := (&group.GroupByOp{In: group.Ungrouped(in), Keys: splitCSV(rest[0])}).Build()
		if err != nil {
			return err
		}
		out = &group.EmbeddedAdapter{In: src}

	case "agg":
		if len(rest) == 0 {
			return jqerr.New(jqerr.UsageError, "agg requires SPEC")
		}
		var flags aggSpecFlag
		if err := flags.Set(rest[0]); err != nil {
			return err
		}
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
		out, err = (&group.AggregateOp{In: group.AsRelation(grouped), Fields: flags.fields, WholeRelation: !hasMeta}).Build()
		if err != nil {
			return err
		}
	}

	_, err = ws.RunOperator(cmd, out)
	return err
}
