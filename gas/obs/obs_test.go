package obs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/internal/testutil"
)

func TestLoad_ReadsSegmentsInNameOrder(t *testing.T) {
	// GIVEN two PACS segment files and an unrelated file
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "star_r1a.dat", "# R1A\n120 1\n130 2\n")
	testutil.WriteFile(t, dir, "star_b2a.dat", "60 3\n70 4\n")
	testutil.WriteFile(t, dir, "notes.txt", "not a segment")

	// WHEN loaded
	p, err := Load(gas.InstrumentPACS, dir)

	// THEN segments carry their band as order label
	require.NoError(t, err)
	assert.Equal(t, gas.InstrumentPACS, p.Instrument())
	segs := p.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, "star_b2a.dat", segs[0].Filename)
	assert.Equal(t, "B2A", segs[0].Order)
	assert.Equal(t, "R1A", segs[1].Order)
	assert.Equal(t, []float64{120, 130}, segs[1].X)
}

func TestLoad_UnknownInstrument(t *testing.T) {
	_, err := Load(gas.Instrument("MIRI"), t.TempDir())
	assert.True(t, errors.Is(err, gas.ErrConfiguration))
}

func TestLoad_EmptyDirectory(t *testing.T) {
	p, err := Load(gas.InstrumentSPIRE, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, p.Segments())
}

func TestBandOf_FallsBackToBaseName(t *testing.T) {
	assert.Equal(t, "SLW", bandOf(gas.InstrumentSPIRE, "x_slw_1.dat"))
	assert.Equal(t, "odd", bandOf(gas.InstrumentSPIRE, "odd.dat"))
}

func TestReadColumns_Errors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := ReadColumns(testutil.WriteFile(t, dir, "one.dat", "1\n"))
	assert.Error(t, err)
	_, _, err = ReadColumns(testutil.WriteFile(t, dir, "bad.dat", "1 x\n"))
	assert.Error(t, err)
}

func TestReadWindows(t *testing.T) {
	dir := t.TempDir()
	ws, err := ReadWindows(testutil.WriteFile(t, dir, "w.dat", "60 65\n! comment\n120 121.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []gas.Window{{Min: 60, Max: 65}, {Min: 120, Max: 121.5}}, ws)

	_, err = ReadWindows(testutil.WriteFile(t, dir, "rev.dat", "65 60\n"))
	assert.True(t, errors.Is(err, gas.ErrConfiguration))
}

func TestProfiles_ObservedProfile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "co21.dat", testutil.Columns([]float64{-10, 0, 10}, []float64{0.1, 1, 0.1}))
	p := &Profiles{Dir: dir}
	tr := gas.Transition{Molecule: "CO", Label: "J=2-1", Telescope: "APEX", DataFile: "co21.dat"}

	s, ok, err := p.ObservedProfile(context.Background(), tr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 1, 0.1}, s.Y)

	tr.DataFile = "absent.dat"
	_, ok, err = p.ObservedProfile(context.Background(), tr)
	require.NoError(t, err)
	assert.False(t, ok)

	tr.DataFile = ""
	_, ok, err = p.ObservedProfile(context.Background(), tr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileConvolver(t *testing.T) {
	// GIVEN a convolved spectrum for one of two segments
	dir := t.TempDir()
	testutil.WriteFile(t, dir, filepath.Join("m1", SphinxFile("b2a.dat")), "60 1\n70 2\n")
	segs := []gas.Segment{{Filename: "b2a.dat"}, {Filename: "r1a.dat"}}
	c := &FileConvolver{Dir: dir}
	s := gas.Star{Name: "a", CoolingModel: gas.StringPtr("m1")}

	// WHEN convolved
	got, err := c.Convolve(context.Background(), s, segs)

	// THEN the missing segment is empty
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 2}, got[0].Y)
	assert.True(t, got[1].Empty())

	s.CoolingModel = gas.StringPtr("m2")
	_, err = c.Convolve(context.Background(), s, segs)
	assert.True(t, errors.Is(err, gas.ErrNoConvolution))

	_, err = c.Convolve(context.Background(), gas.Star{Name: "none"}, segs)
	assert.True(t, errors.Is(err, gas.ErrNoConvolution))
}
