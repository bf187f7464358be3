// Package testutil provides shared test infrastructure for gas and cmd: float assertions
// and on-disk fixtures. It does not import gas so that in-package tests can use it.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64sEqual compares two slices element-wise with relative tolerance.
func AssertFloat64sEqual(t *testing.T, name string, want, got []float64, relTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: got %d values, want %d", name, len(got), len(want))
		return
	}
	for i := range want {
		AssertFloat64Equal(t, fmt.Sprintf("%s[%d]", name, i), want[i], got[i], relTol)
	}
}

// WriteFile writes content to dir/name, creating parent directories, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Columns formats parallel slices as whitespace-separated rows.
func Columns(cols ...[]float64) string {
	if len(cols) == 0 {
		return ""
	}
	var b strings.Builder
	for i := range cols[0] {
		for j, c := range cols {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", c[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TestdataPath resolves a file under the repository testdata directory.
// The path is resolved relative to this source file: internal/testutil/ → testdata/.
func TestdataPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", name)
}
