// Package modelout reads radiative-transfer model output from disk: whitespace-separated
// column tables, line profiles of completed transitions, and star grid files.
package modelout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/linetiles/linetiles/gas"
)

// Table is a column-oriented numeric table. The first non-comment line names the columns.
type Table struct {
	Names   []string
	columns map[string][]float64
}

// ReadTable reads a table file. A missing file wraps gas.ErrMissingModelOutput.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", gas.ErrMissingModelOutput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open model output: %w", err)
	}
	defer f.Close()
	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable parses a table from r. Lines starting with '#' or '!' and blank lines are
// skipped. Fortran 'D' exponents are accepted.
func ParseTable(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	t := &Table{columns: make(map[string][]float64)}
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		fields := strings.Fields(line)
		if t.Names == nil {
			t.Names = make([]string, len(fields))
			for i, name := range fields {
				t.Names[i] = strings.ToUpper(name)
			}
			continue
		}
		row++
		if len(fields) != len(t.Names) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row, len(t.Names), len(fields))
		}
		for i, field := range fields {
			v, err := parseFloat(field)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, t.Names[i], err)
			}
			t.columns[t.Names[i]] = append(t.columns[t.Names[i]], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}
	if t.Names == nil {
		return nil, fmt.Errorf("model output empty or missing header")
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.NewReplacer("D", "E", "d", "e").Replace(s)
	return strconv.ParseFloat(s, 64)
}

// Column returns a copy of the named column, matched case-insensitively.
func (t *Table) Column(keyword string) ([]float64, bool) {
	col, ok := t.columns[strings.ToUpper(keyword)]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), col...), true
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	if len(t.Names) == 0 {
		return 0
	}
	return len(t.columns[t.Names[0]])
}

// HasNaN reports whether any of the named columns holds a NaN.
func (t *Table) HasNaN(keywords ...string) bool {
	for _, k := range keywords {
		col, _ := t.Column(k)
		for _, v := range col {
			if math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}
