package workload

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/types"
)

const exampleScript = `
validate: true
operations:
  - op: insert
    keys: [10, 20, 30, 40, 50]
    value: foo
  - op: insert
    keys: [20]
  - op: upsert
    keys: [20, 60]
    value: bar
  - op: delete
    keys: [30, 99]
  - op: Search
    keys: [10, 30]
`

func TestParseAndApply(t *testing.T) {
	script, err := Parse([]byte(exampleScript))
	require.NoError(t, err)
	require.Len(t, script.Operations, 5)
	assert.Equal(t, OpSearch, script.Operations[4].Op)
	assert.Equal(t, 12, script.Count())

	tree := rbtree.New[int64, string]()
	report, err := Apply(tree, script)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Inserted)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []int64{99}, report.Missing)
	assert.Equal(t, 1, report.Hits)
	assert.Equal(t, 1, report.Misses)
	assert.Equal(t, 5, report.Validations, "one check per operation entry")

	assert.Equal(t, []int64{10, 20, 40, 50, 60}, slices.Collect(tree.Keys(types.InOrder)))

	v, err := tree.Get(20)
	require.NoError(t, err)
	assert.Equal(t, "bar", v)
}

func TestParse_UnsupportedOperation(t *testing.T) {
	_, err := Parse([]byte("operations:\n  - op: rotate\n    keys: [1]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported operation")

	_, err = Parse([]byte("operations:\n  - keys: [1]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleScript), 0o644))

	script, err := Load(path)
	require.NoError(t, err)
	assert.True(t, script.Validate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	script := Generate(GenerateOptions{
		Size:        1000,
		DeleteRatio: 0.5,
		Searches:    100,
		Seed:        1,
	})
	require.Len(t, script.Operations, 3)
	assert.Equal(t, 1600, script.Count())

	tree := rbtree.New[int64, string]()
	var calls int
	report, err := ApplyWithProgress(tree, script, func() { calls++ })
	require.NoError(t, err)

	assert.Equal(t, 1600, calls)
	assert.Zero(t, report.Validations)
	assert.Equal(t, 1000, report.Inserted)
	assert.Equal(t, 500, report.Deleted)
	assert.Empty(t, report.Missing)
	assert.Equal(t, 100, report.Hits+report.Misses)
	assert.Equal(t, 500, tree.Size())
	assert.NoError(t, tree.Validate())

	// same seed, same script
	again := Generate(GenerateOptions{Size: 1000, DeleteRatio: 0.5, Searches: 100, Seed: 1})
	assert.Equal(t, script, again)
}

func TestGenerate_Sorted(t *testing.T) {
	script := Generate(GenerateOptions{Size: 5, Sorted: true})
	require.Len(t, script.Operations, 1)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, script.Operations[0].Keys)

	data, err := script.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, script.Operations[0].Keys, parsed.Operations[0].Keys)
}
