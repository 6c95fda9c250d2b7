// Command jqrel is the CLI driver of spec.md §6: a thin dispatcher from
// abstract subcommands onto the Operator Core, Grouping Engine, Schema
// Sub-engine, and Workspace — the "external collaborator, minimal"
// component of SPEC_FULL.md's component table. It follows the teacher's
// own cmd/kqlfile/main.go shape: a testable run(args, stdin, stdout, stderr)
// function, a flag.FlagSet per command, and an exitFunc var so tests can
// intercept process exit.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/jqrel/jqrel/pkg/jqerr"
)

var exitFunc = os.Exit

var log = logrus.New()

func main() {
	exitFunc(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "select":
		err = runSelect(rest, stdin, stdout)
	case "project":
		err = runProject(rest, stdin, stdout)
	case "rename":
		err = runRename(rest, stdin, stdout)
	case "distinct":
		err = runDistinct(rest, stdin, stdout)
	case "explode":
		err = runExplode(rest, stdin, stdout)
	case "sort":
		err = runSort(rest, stdin, stdout)
	case "union", "intersection", "difference", "product":
		err = runSetOp(cmd, rest, stdout)
	case "join":
		err = runJoin(rest, stdout)
	case "groupby":
		err = runGroupBy(rest, stdin, stdout)
	case "agg":
		err = runAgg(rest, stdin, stdout)
	case "schema":
		err = runSchema(rest, stdin, stdout)
	case "repl":
		err = runRepl(rest, stdin, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "jqrel: unknown command %q\n", cmd)
		printUsage(stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintln(stderr, "jqrel:", err)
		return jqerr.ExitCode(err)
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: jqrel <command> [flags]

commands:
  select EXPR [FILE]              filter records ("truthy" matches)
  project FIELDS [FILE]           comma-separated bare paths or name=expr
  rename MAP [FILE]                comma-separated from=to pairs
  distinct [FILE]
  explode PATH [FILE]
  sort KEYS [FILE]                comma-separated paths, --desc to reverse
  union|intersection|difference|product A B
  join A B --on PAIRS              comma-separated l_path=r_path
  groupby KEYS [--agg SPEC]...     comma-separated paths
  agg SPEC [FILE]                  name:fn:path, repeatable via commas
  schema infer [FILE]
  repl [FILE]                      enter workspace mode`)
}
