package gas

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeColumns serves fixed columns for every model and file not listed as missing.
type fakeColumns struct {
	missing      map[string]bool
	missingFiles map[string]bool
	fail         error
}

func (f fakeColumns) Column(_ context.Context, model, file, keyword string) ([]float64, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if f.missing[model] || f.missingFiles[file] {
		return nil, fmt.Errorf("%w: %s", ErrMissingModelOutput, file)
	}
	switch keyword {
	case "RADIUS":
		return []float64{1e14, 1e16, 1e18}, nil
	case "VEL":
		return []float64{1e5, 1e6, 1.5e6}, nil
	case "TEMP":
		return []float64{2000, 100, 10}, nil
	case "N(H2)":
		return []float64{1e8, 0, 1e4}, nil
	case "N(MOLEC)":
		return []float64{1e4, 5, 1}, nil
	case "P":
		return []float64{0.1, 1, 10}, nil
	case "NORM_INTENSITY":
		return []float64{0, 1, 0.2}, nil
	case "WEIGHTED_INTENSITY":
		return []float64{0, 30, 6}, nil
	}
	return nil, fmt.Errorf("no column %s", keyword)
}

func TestProfileRun_Velocities(t *testing.T) {
	// GIVEN two stars, one of which has no output
	a := star("a", "m1")
	a.RStar = 1
	a.AverageDrift = 2.5
	r := &fakeRenderer{}
	run := &ProfileRun{
		Stars:    []Star{a, star("b", "gone"), {Name: "no cooling model"}},
		Columns:  fakeColumns{missing: map[string]bool{"gone": true}},
		Renderer: r,
	}

	// WHEN velocities are drawn
	arts, err := run.Velocities(context.Background())

	// THEN only the first star gets a figure, in km/s against stellar radii
	require.NoError(t, err)
	require.Len(t, arts, 1)
	require.Len(t, r.columns, 1)
	fig := r.columns[0]
	assert.Equal(t, "velocity_m1_0", fig.Name)
	assert.True(t, fig.XLog)
	assert.InDeltaSlice(t, []float64{1, 10, 15}, fig.Series[0].Y, 1e-9)
	assert.InDelta(t, 1e14/SolarRadius, fig.Series[0].X[0], 1e-9)
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, fig.Series[1].Y)
}

func TestProfileRun_Temperatures(t *testing.T) {
	r := &fakeRenderer{}
	b := star("b", "m2")
	b.PacsModel = StringPtr("p2")
	b.MdotGas = 1e-6
	run := &ProfileRun{Stars: []Star{star("a", "m1"), b}, Columns: fakeColumns{}, Renderer: r}

	arts, err := run.Temperatures(context.Background())

	require.NoError(t, err)
	assert.Len(t, arts, 2)
	require.Len(t, r.columns, 2)
	cm, rstar := r.columns[0], r.columns[1]
	assert.Equal(t, "temperature_profiles", cm.Name)
	assert.Equal(t, []float64{1e14, 1e16}, cm.Series[0].X, "radii beyond 1e17 cm are cropped")
	assert.Equal(t, []string{"Model 1", "Model 2"}, cm.KeyTags)
	assert.Equal(t, "temperature_profiles_rstar", rstar.Name)
	assert.Equal(t, "m2,    p2,    Mdot = 1.00e-06", rstar.KeyTags[1])
}

func TestProfileRun_TemperaturesNeedForceForLargeGrids(t *testing.T) {
	stars := make([]Star, MaxProfileModels)
	for i := range stars {
		stars[i] = star(fmt.Sprint(i), fmt.Sprintf("m%d", i))
	}
	r := &fakeRenderer{}

	arts, err := (&ProfileRun{Stars: stars, Columns: fakeColumns{}, Renderer: r}).Temperatures(context.Background())
	require.NoError(t, err)
	assert.Empty(t, arts)

	arts, err = (&ProfileRun{Stars: stars, Columns: fakeColumns{}, Renderer: r, Force: true}).Temperatures(context.Background())
	require.NoError(t, err)
	assert.Len(t, arts, 2)
}

func TestProfileRun_ReadErrorsOtherThanMissingAbort(t *testing.T) {
	boom := errors.New("corrupt")
	run := &ProfileRun{Stars: []Star{star("a", "m1")}, Columns: fakeColumns{fail: boom}, Renderer: &fakeRenderer{}}

	_, err := run.Velocities(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestProfileRun_NothingComputed(t *testing.T) {
	run := &ProfileRun{Stars: []Star{star("a", "m1")}, Columns: fakeColumns{missing: map[string]bool{"m1": true}}, Renderer: &fakeRenderer{}}

	arts, err := run.Temperatures(context.Background())

	require.NoError(t, err)
	assert.Empty(t, arts)
}

func TestProfileRun_Abundances(t *testing.T) {
	// GIVEN a star with CO and H2O lines, of which H2O has no cooling output
	co := Transition{Molecule: "12C16O", MoleculePlot: "CO", MoleculeIndex: 0, Label: "J=2-1", ModelID: "m1"}
	co32 := Transition{Molecule: "12C16O", MoleculePlot: "CO", Label: "J=3-2", ModelID: "m1"}
	h2o := Transition{Molecule: "1H1H16O", MoleculeIndex: 1, Label: "2_12-1_01", ModelID: "m1"}
	a := star("a", "m1", h2o, co, co32)
	a.RStar = 2
	r := &fakeRenderer{}
	run := &ProfileRun{
		Stars:    []Star{a, {Name: "no cooling model"}},
		Columns:  fakeColumns{missingFiles: map[string]bool{"cool1m1_1H1H16O.dat": true}},
		Renderer: r,
	}

	// WHEN abundances are drawn
	arts, err := run.Abundances(context.Background())

	// THEN one log-log figure holds the CO ratio against radius in cm, skipping zero H2 densities
	require.NoError(t, err)
	require.Len(t, arts, 1)
	fig := r.columns[0]
	assert.Equal(t, "abundance_profiles_m1", fig.Name)
	assert.True(t, fig.XLog)
	assert.True(t, fig.YLog)
	assert.Equal(t, []string{"CO"}, fig.KeyTags)
	require.Len(t, fig.Series, 1)
	assert.InDeltaSlice(t, []float64{1e-4, 1e-4}, fig.Series[0].Y, 1e-15)
	assert.InEpsilonSlice(t, []float64{1e14 * 2 * SolarRadius, 1e18 * 2 * SolarRadius}, fig.Series[0].X, 1e-12)
}

func TestProfileRun_AbundancesNothingComputed(t *testing.T) {
	co := Transition{Molecule: "12C16O", Label: "J=2-1", ModelID: "m1"}
	run := &ProfileRun{
		Stars:    []Star{star("a", "m1", co)},
		Columns:  fakeColumns{missing: map[string]bool{"m1": true}},
		Renderer: &fakeRenderer{},
	}

	arts, err := run.Abundances(context.Background())

	require.NoError(t, err)
	assert.Empty(t, arts)
}

func contributionStar() Star {
	return star("a", "m1",
		Transition{Molecule: "12C16O", Label: "J=3-2", Telescope: "JCMT", Frequency: 345.796e9, ModelID: "m1"},
		Transition{Molecule: "12C16O", Label: "J=2-1", Telescope: "APEX", Frequency: 230.538e9, ModelID: "m1"},
		Transition{Molecule: "12C16O", Label: "J=6-5", Telescope: "APEX", Frequency: 691.473e9},
		Transition{Molecule: "12C16O", Label: "J=4-3", Telescope: "APEX", Frequency: 461.041e9, ModelID: "m1"},
	)
}

func TestProfileRun_LineContributions(t *testing.T) {
	tests := []struct {
		name      string
		keys      []TransitionKey
		keepOrder bool
		weighted  bool
		wantTags  []string
		wantY     []float64
		wantBound bool
	}{
		{
			name:      "all completed lines by wavelength, normalized",
			wantTags:  []string{"12C16O: J=4-3", "12C16O: J=3-2", "12C16O: J=2-1"},
			wantY:     []float64{0, 1, 0.2},
			wantBound: true,
		},
		{
			name:      "requested lines in requested order",
			keys:      []TransitionKey{{"12C16O", "J=2-1", "APEX"}, {"12C16O", "J=6-5", "APEX"}, {"12C16O", "J=4-3", "APEX"}},
			keepOrder: true,
			wantTags:  []string{"12C16O: J=2-1", "12C16O: J=4-3"},
			wantY:     []float64{0, 1, 0.2},
			wantBound: true,
		},
		{
			name:     "requested lines sorted, weighted",
			keys:     []TransitionKey{{"12C16O", "J=2-1", "APEX"}, {"12C16O", "J=4-3", "APEX"}},
			weighted: true,
			wantTags: []string{"12C16O: J=4-3", "12C16O: J=2-1"},
			wantY:    []float64{0, 30, 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{}
			run := &ProfileRun{
				Stars:     []Star{contributionStar()},
				Columns:   fakeColumns{},
				Renderer:  r,
				Weighted:  tt.weighted,
				KeepOrder: tt.keepOrder,
			}

			arts, err := run.LineContributions(context.Background(), tt.keys)

			require.NoError(t, err)
			require.Len(t, arts, 1)
			fig := r.columns[0]
			assert.Equal(t, "linecontrib_m1_0", fig.Name)
			assert.Equal(t, "a: Line Contributions for m1", fig.Title)
			assert.Equal(t, tt.wantTags, fig.KeyTags)
			assert.Equal(t, tt.wantY, fig.Series[0].Y)
			assert.Equal(t, []float64{0.1, 1, 10}, fig.Series[0].X)
			assert.Equal(t, tt.wantBound, fig.YBounds.Set)
		})
	}
}

func TestProfileRun_LineContributionsSkipMissingTables(t *testing.T) {
	s := contributionStar()
	r := &fakeRenderer{}
	missing := map[string]bool{ContributionFile(s.Lines[0]): true}
	run := &ProfileRun{Stars: []Star{s}, Columns: fakeColumns{missingFiles: missing}, Renderer: r}

	arts, err := run.LineContributions(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, []string{"12C16O: J=4-3", "12C16O: J=2-1"}, r.columns[0].KeyTags)
	assert.Equal(t, "sphinx_12C16O_J3-2_JCMT.dat", ContributionFile(s.Lines[0]))
}
