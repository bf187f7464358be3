package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/internal/testutil"
)

// resetGlobals sets every package-level flag variable to its default, with scratch
// directories for model output and figures.
func resetGlobals(t *testing.T) {
	t.Helper()
	d := gas.DefaultLineProfileOptions()
	gridPath, modelIDs, modelsDir, outDir, runID, metricsFile = "", nil, t.TempDir(), t.TempDir(), "test", ""
	overlayPath, profileDir, dimensions = "", ".", []int{d.Grid.X, d.Grid.Y}
	noData, noModels, vgFactor = d.NoData, d.NoModels, d.VGFactor
	sortFreq, sortMolec, doSort, keyTags = d.SortFreq, d.SortMolec, d.DoSort, nil
	instrument, segmentDir, resultsDir = string(gas.InstrumentPACS), t.TempDir(), "results"
	spectrumMode, windowsPath, lineListDir = string(gas.SpectrumBands), "", ""
	storeDriver, storeDSN, refresh, noise, chiMode, specNoData = "memory", "", false, 0, "diff", false
	labelMin, labelMax, labelsFromDB, labelsPlotName = 0, 1e6, false, false
	profileKind, forceProfile, weightedContrib, keepLineOrder = "both", false, false, false
}

// tileFlags registers the tile flags on a fresh command so Changed reflects only this test.
func tileFlags() *cobra.Command {
	d := gas.DefaultLineProfileOptions()
	cmd := &cobra.Command{}
	f := cmd.Flags()
	f.IntSliceVar(&dimensions, "dimensions", []int{d.Grid.X, d.Grid.Y}, "")
	f.BoolVar(&noData, "no-data", d.NoData, "")
	f.BoolVar(&noModels, "no-models", d.NoModels, "")
	f.Float64Var(&vgFactor, "vg-factor", d.VGFactor, "")
	f.BoolVar(&sortFreq, "sort-freq", d.SortFreq, "")
	f.BoolVar(&sortMolec, "sort-molec", d.SortMolec, "")
	f.BoolVar(&doSort, "do-sort", d.DoSort, "")
	f.StringSliceVar(&keyTags, "keytags", nil, "")
	return cmd
}

func TestTileOptions_DefaultsWithoutFlags(t *testing.T) {
	resetGlobals(t)

	opts, err := tileOptions(tileFlags())

	require.NoError(t, err)
	assert.Equal(t, gas.DefaultLineProfileOptions(), opts)
}

func TestTileOptions_FlagsOverrideOverlay(t *testing.T) {
	// GIVEN an overlay setting vg_factor and no_data
	resetGlobals(t)
	overlayPath = testutil.WriteFile(t, t.TempDir(), "overlay.yaml", "vg_factor: 2\nno_data: 1\ndimensions: [3, 3]\n")
	cmd := tileFlags()

	// WHEN the user also passes --vg-factor and --keytags
	require.NoError(t, cmd.Flags().Set("vg-factor", "4"))
	require.NoError(t, cmd.Flags().Set("keytags", "obs,fit"))
	opts, err := tileOptions(cmd)

	// THEN explicit flags win and the rest of the overlay survives
	require.NoError(t, err)
	assert.Equal(t, 4.0, opts.VGFactor)
	assert.True(t, opts.NoData)
	assert.Equal(t, gas.Grid{X: 3, Y: 3}, opts.Grid)
	assert.Equal(t, []string{"obs", "fit"}, opts.KeyTags)
}

func TestTileOptions_Errors(t *testing.T) {
	resetGlobals(t)
	cmd := tileFlags()
	require.NoError(t, cmd.Flags().Set("dimensions", "1,2,3"))
	_, err := tileOptions(cmd)
	assert.True(t, errors.Is(err, gas.ErrConfiguration))

	resetGlobals(t)
	overlayPath = testutil.WriteFile(t, t.TempDir(), "overlay.yaml", "colours: many\n")
	_, err = tileOptions(tileFlags())
	assert.True(t, errors.Is(err, gas.ErrConfiguration))
}

func TestLoadStars(t *testing.T) {
	resetGlobals(t)

	_, err := loadStars()
	assert.ErrorContains(t, err, "undefined")

	gridPath = testutil.TestdataPath(t, "grid.yaml")
	stars, err := loadStars()
	require.NoError(t, err)
	assert.Len(t, stars, 2)

	modelIDs = []string{"model_x"}
	_, err = loadStars()
	assert.ErrorContains(t, err, "doubly")

	gridPath = ""
	_, err = loadStars()
	assert.True(t, errors.Is(err, gas.ErrMissingModelOutput))
}

func TestRunTiles_WritesBothPasses(t *testing.T) {
	// GIVEN the repository grid and no model output on disk
	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	metricsFile = filepath.Join(t.TempDir(), "linetiles.prom")

	// WHEN tiles are run
	var out bytes.Buffer
	err := runTiles(context.Background(), &out, gas.DefaultLineProfileOptions())

	// THEN a page of each pass is written and reported
	require.NoError(t, err)
	assert.Contains(t, out.String(), "test/line_profiles_1.png")
	assert.Contains(t, out.String(), "test/intrinsic_line_profiles_1.png")
	_, err = os.Stat(filepath.Join(outDir, "test", "line_profiles_1.png"))
	assert.NoError(t, err)
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "linetiles_pages_total 2")
}

func TestRunLabels_FromGrid(t *testing.T) {
	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	labelMin, labelMax = 800, 2000

	var out bytes.Buffer
	require.NoError(t, runLabels(context.Background(), &out))

	assert.Contains(t, out.String(), "12C16O J=2-1")
	assert.Contains(t, out.String(), "12C16O J=3-2")
	assert.NotContains(t, out.String(), "2_12-1_01")

	labelsPlotName = true
	out.Reset()
	require.NoError(t, runLabels(context.Background(), &out))
	assert.Contains(t, out.String(), "CO")
	assert.NotContains(t, out.String(), "12C16O")
}

func TestRunLabels_InvertedWindow(t *testing.T) {
	resetGlobals(t)
	labelMin, labelMax = 10, 1
	err := runLabels(context.Background(), &bytes.Buffer{})
	assert.True(t, errors.Is(err, gas.ErrConfiguration))
}

func TestRunSpectrum_BandsWithComparison(t *testing.T) {
	// GIVEN one PACS segment and the convolved spectrum of the first star
	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	segmentDir = t.TempDir()
	resultsDir = t.TempDir()
	testutil.WriteFile(t, segmentDir, "star_b2a.dat", "60 1\n61 2\n62 1\n")
	testutil.WriteFile(t, resultsDir, "model_2011-01-02h10-00-00/sphinx_star_b2a.dat", "60 1.1\n61 1.9\n62 1\n")
	noise = 0.1

	// WHEN the spectrum command runs
	var out bytes.Buffer
	err := runSpectrum(context.Background(), &out)

	// THEN the band figure is written and the first star is compared
	require.NoError(t, err)
	assert.Contains(t, out.String(), "test/pacs_star_b2a.png")
	assert.Contains(t, out.String(), "model_a\tstar_b2a.dat\tchi2=")
	assert.NotContains(t, out.String(), "model_b\t")
}

func TestRunSpectrum_Validation(t *testing.T) {
	resetGlobals(t)
	spectrumMode = "everything"
	assert.True(t, errors.Is(runSpectrum(context.Background(), &bytes.Buffer{}), gas.ErrConfiguration))

	resetGlobals(t)
	noise, chiMode = 1, "abs"
	assert.True(t, errors.Is(runSpectrum(context.Background(), &bytes.Buffer{}), gas.ErrConfiguration))

	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	spectrumMode = string(gas.SpectrumWindows)
	assert.True(t, errors.Is(runSpectrum(context.Background(), &bytes.Buffer{}), gas.ErrConfiguration))
}

func TestRunProfiles(t *testing.T) {
	resetGlobals(t)
	profileKind = "density"
	assert.True(t, errors.Is(runProfiles(context.Background(), &bytes.Buffer{}), gas.ErrConfiguration))

	// GIVEN cooling output for the first star only
	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	testutil.WriteFile(t, modelsDir, "model_2011-01-01h10-00-00/coolfgr_allmodel_2011-01-01h10-00-00.dat",
		"RADIUS VEL TEMP\n1e14 1e5 2000\n1e15 1e6 500\n1e16 1.4e6 60\n")

	var out bytes.Buffer
	require.NoError(t, runProfiles(context.Background(), &out))

	assert.Contains(t, out.String(), "test/velocity_model_2011-01-01h10-00-00_0.png")
	assert.Contains(t, out.String(), "test/temperature_profiles.png")
	assert.Contains(t, out.String(), "test/temperature_profiles_rstar.png")
	assert.NotContains(t, out.String(), "abundance_profiles")
}

func TestRunProfiles_AbundancesAndContributions(t *testing.T) {
	// GIVEN CO cooling output and one line contribution table for the first star
	resetGlobals(t)
	gridPath = testutil.TestdataPath(t, "grid.yaml")
	profileKind = "all"
	model := "model_2011-01-01h10-00-00"
	testutil.WriteFile(t, modelsDir, model+"/cool1"+model+"_12C16O.dat",
		"RADIUS N(H2) N(MOLEC)\n2 1e8 1e4\n20 1e6 1e2\n")
	testutil.WriteFile(t, modelsDir, model+"/sphinx_12C16O_J2-1_APEX.dat",
		"P NORM_INTENSITY WEIGHTED_INTENSITY\n0.5 0.1 3\n5 1 30\n50 0.2 6\n")

	// WHEN every profile kind is drawn
	var out bytes.Buffer
	require.NoError(t, runProfiles(context.Background(), &out))

	// THEN the abundance and contribution figures are stored next to the missing-output skips
	assert.Contains(t, out.String(), "test/abundance_profiles_"+model+".png")
	assert.Contains(t, out.String(), "test/linecontrib_model_2011-01-02h10-00-00_0.png")
	_, err := os.Stat(filepath.Join(outDir, "test", "abundance_profiles_"+model+".png"))
	assert.NoError(t, err)
}
