package workspace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jqrel/jqrel/pkg/relop"
	"github.com/jqrel/jqrel/pkg/value"
)

func writeTempJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	for _, l := range lines {
		_, err := f.WriteString(l + "\n")
		require.NoError(t, err)
	}
	return path
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestLoadDefaultsNameToStemAndRejectsCollision(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1}`)
	ds, err := ws.Load(path, "", false)
	require.NoError(t, err)
	assert.Equal(t, "data", ds.Name)
	assert.Equal(t, "data", ws.Pwd())

	_, err = ws.Load(path, "data", false)
	assert.Error(t, err)
}

func TestCdAndDatasetsLexicalOrder(t *testing.T) {
	ws := newTestWorkspace(t)
	p1 := writeTempJSONL(t, `{"a":1}`)
	p2 := writeTempJSONL(t, `{"b":1}`)
	_, err := ws.Load(p1, "zeta", false)
	require.NoError(t, err)
	_, err = ws.Load(p2, "alpha", false)
	require.NoError(t, err)

	names := make([]string, 0, 2)
	for _, ds := range ws.Datasets() {
		names = append(names, ds.Name)
	}
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	require.NoError(t, ws.Cd("zeta"))
	assert.Equal(t, "zeta", ws.Pwd())

	assert.Error(t, ws.Cd("missing"))
}

func TestRunOperatorSpillsAndRegistersDerived(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1}`, `{"a":2}`)
	_, err := ws.Load(path, "src", false)
	require.NoError(t, err)

	o1 := value.NewObject(1)
	o1.Set("a", value.Int(1))
	rel := relop.FromSlice([]*value.Object{o1})
	ds, err := ws.RunOperator("filtered", rel)
	require.NoError(t, err)
	assert.Equal(t, Derived, ds.Kind)
	assert.Equal(t, "filtered", ws.Pwd())

	_, err = os.Stat(ds.Path)
	assert.NoError(t, err)
}

func TestInfoCountsRowsAndSamplesKeys(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1,"b":2}`, `{"a":3}`)
	_, err := ws.Load(path, "src", false)
	require.NoError(t, err)

	info, err := ws.Info("src")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.RowCount)
	assert.Contains(t, info.Keys, "a")
	assert.Contains(t, info.Keys, "b")
	require.NotNil(t, info.Preview)
}

func TestInfoSurfacesLenientDroppedCount(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1}`, `not json`, `{"a":2}`)
	_, err := ws.Load(path, "src", true)
	require.NoError(t, err)

	info, err := ws.Info("src")
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.RowCount)
	assert.Equal(t, 1, info.Dropped)
}

func TestLsStreamsLimitedRecords(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1}`, `{"a":2}`, `{"a":3}`)
	_, err := ws.Load(path, "src", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ws.Ls("src", 2, &buf))
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 2, lines)
}

func TestSaveCopiesCurrentBackingFile(t *testing.T) {
	ws := newTestWorkspace(t)
	path := writeTempJSONL(t, `{"a":1}`)
	_, err := ws.Load(path, "src", false)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, ws.Save(dst))
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"a":1`)
}

func TestCloseRemovesScratchDir(t *testing.T) {
	ws, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	dir := ws.ScratchDir()
	_, statErr := os.Stat(dir)
	require.NoError(t, statErr)
	require.NoError(t, ws.Close())
	_, statErr = os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
