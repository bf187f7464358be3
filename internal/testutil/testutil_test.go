package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_FormatsRows(t *testing.T) {
	got := Columns([]float64{1, 2}, []float64{3.5, 4})
	assert.Equal(t, "1 3.5\n2 4\n", got)
}

func TestWriteFile_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "a/b/c.dat", "x")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, filepath.Join(dir, "a", "b", "c.dat"), path)
}

func TestTestdataPath_PointsAtGridFixture(t *testing.T) {
	_, err := os.Stat(TestdataPath(t, "grid.yaml"))
	assert.NoError(t, err)
}
