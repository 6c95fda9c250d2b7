package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunSelect(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"name\":\"alice\",\"age\":30}\n{\"name\":\"bob\",\"age\":12}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"select", "age > 18", path}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), "alice") || strings.Contains(out.String(), "bob") {
		t.Fatalf("expected only alice, got %s", out.String())
	}
}

func TestRunSelectFromStdin(t *testing.T) {
	var out, errBuf bytes.Buffer
	in := strings.NewReader("{\"a\":1}\n{\"a\":2}\n")
	code := run([]string{"select", "a == 2", "-"}, in, &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), `"a":2`) {
		t.Fatalf("expected a=2, got %s", out.String())
	}
}

func TestRunProject(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"name\":\"alice\",\"age\":30}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"project", "name", path}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if strings.Contains(out.String(), "age") {
		t.Fatalf("expected age dropped, got %s", out.String())
	}
}

func TestRunGroupByAndAgg(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"team\":\"a\",\"score\":1}\n{\"team\":\"a\",\"score\":3}\n{\"team\":\"b\",\"score\":5}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"groupby", "team", "--agg", "total:sum:score", path}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two groups, got %q", out.String())
	}
}

func TestRunAggWholeRelation(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"agg", "total:sum:n,c:count", path}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), `"total":6`) {
		t.Fatalf("expected total 6, got %s", out.String())
	}
}

func TestRunSchemaInfer(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"a\":1}\n{\"a\":null}\n{\"a\":2,\"b\":\"x\"}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"schema", "infer", path}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if !strings.Contains(out.String(), `"type"`) {
		t.Fatalf("expected schema output, got %s", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"bogus"}, strings.NewReader(""), &out, &errBuf)
	if code != 2 {
		t.Fatalf("expected usage exit code 2, got %d", code)
	}
}

func TestRunNoArgs(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{}, strings.NewReader(""), &out, &errBuf)
	if code != 2 {
		t.Fatalf("expected usage exit code 2, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"help"}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("expected help exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "usage:") {
		t.Fatalf("expected usage banner, got %s", out.String())
	}
}

func TestRunMissingInputFile(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run([]string{"select", "a == 1", "missing.jsonl"}, strings.NewReader(""), &out, &errBuf)
	if code == 0 {
		t.Fatalf("expected nonzero exit code")
	}
}

func TestRunSortAndUnion(t *testing.T) {
	pathA := writeTemp(t, "a.jsonl", "{\"n\":3}\n{\"n\":1}\n")
	pathB := writeTemp(t, "b.jsonl", "{\"n\":2}\n")
	var out, errBuf bytes.Buffer
	code := run([]string{"union", pathA, pathB}, strings.NewReader(""), &out, &errBuf)
	if code != 0 {
		t.Fatalf("run: code=%d stderr=%s", code, errBuf.String())
	}
	if len(strings.Split(strings.TrimSpace(out.String()), "\n")) != 3 {
		t.Fatalf("expected 3 union rows, got %s", out.String())
	}
}

func TestMainExitOnError(t *testing.T) {
	oldArgs := os.Args
	oldExit := exitFunc
	defer func() {
		os.Args = oldArgs
		exitFunc = oldExit
	}()

	called := -1
	exitFunc = func(code int) { called = code }
	os.Args = []string{"jqrel", "bogus"}
	main()
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestMainSuccess(t *testing.T) {
	path := writeTemp(t, "data.jsonl", "{\"a\":1}\n")

	oldArgs := os.Args
	oldStdout := os.Stdout
	oldExit := exitFunc
	defer func() {
		os.Args = oldArgs
		os.Stdout = oldStdout
		exitFunc = oldExit
	}()

	r, w, _ := os.Pipe()
	os.Stdout = w
	exitFunc = func(int) {}
	os.Args = []string{"jqrel", "select", "a == 1", path}

	main()
	w.Close()
	out, _ := io.ReadAll(r)
	if !strings.Contains(string(out), `"a":1`) {
		t.Fatalf("expected main output, got %s", string(out))
	}
}
