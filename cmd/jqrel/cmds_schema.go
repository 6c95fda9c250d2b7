package main

import (
	"flag"
	"io"
	"os/exec"

	"github.com/jqrel/jqrel/pkg/jqerr"
	"github.com/jqrel/jqrel/pkg/jsonl"
	"github.com/jqrel/jqrel/pkg/schema"
	"github.com/jqrel/jqrel/pkg/value"
)

// runSchema dispatches schema's two sub-verbs: infer builds a
// JSON-Schema-shaped description in-process (pkg/schema), validate
// delegates to an external validator binary — per §4.9, "validation
// delegates to an external validator over a schema file", the Schema
// Sub-engine itself never re-implements JSON-Schema validation.
func runSchema(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return jqerr.New(jqerr.UsageError, "schema requires a sub-command: infer or validate")
	}
	switch args[0] {
	case "infer":
		return runSchemaInfer(args[1:], stdin, stdout)
	case "validate":
		return runSchemaValidate(args[1:])
	default:
		return jqerr.Newf(jqerr.UsageError, "unknown schema sub-command %q", args[0])
	}
}

func runSchemaInfer(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("schema infer", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing schema infer flags")
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

	node, err := schema.Infer(in)
	if err != nil {
		return err
	}
	out := jsonl.NewWriter(stdout)
	rendered := node.ToValue()
	if rendered.Kind() != value.KindObject {
		return jqerr.New(jqerr.PipelineError, "inferred schema did not render as an object")
	}
	if err := out.WriteRecord(rendered.Obj()); err != nil {
		return err
	}
	return out.Flush()
}

func runSchemaValidate(args []string) error {
	fs := flag.NewFlagSet("schema validate", flag.ContinueOnError)
	validator := fs.String("validator", "jsonschema", "external validator binary invoked as VALIDATOR SCHEMA FILE")
	if err := fs.Parse(args); err != nil {
		return jqerr.Wrap(jqerr.UsageError, err, "parsing schema validate flags")
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return jqerr.New(jqerr.UsageError, "schema validate requires SCHEMA FILE")
	}
	cmd := exec.Command(*validator, rest[0], rest[1])
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		log.Info(string(out))
	}
	if err != nil {
		return jqerr.Wrap(jqerr.PipelineError, err, "external validator failed")
	}
	return nil
}
