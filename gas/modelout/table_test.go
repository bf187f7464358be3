package modelout

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linetiles/linetiles/gas"
)

func TestParseTable_HeaderCommentsAndFortranExponents(t *testing.T) {
	// GIVEN a table with comments, a lowercase header and D exponents
	in := `# cooling output
! generated
radius temp

1.0D14   2.0d3
1.0E16   100
`

	// WHEN parsed
	tbl, err := ParseTable(strings.NewReader(in))

	// THEN columns are keyed case-insensitively and values decoded
	require.NoError(t, err)
	assert.Equal(t, []string{"RADIUS", "TEMP"}, tbl.Names)
	assert.Equal(t, 2, tbl.Rows())
	r, ok := tbl.Column("Radius")
	require.True(t, ok)
	assert.Equal(t, []float64{1e14, 1e16}, r)
	temp, _ := tbl.Column("TEMP")
	assert.Equal(t, []float64{2000, 100}, temp)
}

func TestParseTable_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":       "# only a comment\n",
		"ragged row":  "A B\n1 2\n3\n",
		"not numeric": "A\nabc\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestTable_HasNaN(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("VEL TMB\n1 NaN\n2 3\n"))
	require.NoError(t, err)

	assert.True(t, tbl.HasNaN("TMB"))
	assert.False(t, tbl.HasNaN("VEL", "ABSENT"))
	v, _ := tbl.Column("TMB")
	assert.True(t, math.IsNaN(v[0]))
}

func TestTable_ColumnReturnsCopy(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("A\n1\n"))
	require.NoError(t, err)
	c, _ := tbl.Column("A")
	c[0] = 42
	again, _ := tbl.Column("A")
	assert.Equal(t, []float64{1}, again)
}

func TestReadTable_MissingFileIsMissingOutput(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "absent.dat"))
	assert.True(t, errors.Is(err, gas.ErrMissingModelOutput))
}
