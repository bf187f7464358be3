package gas

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

const (
	// SolarRadius in cm.
	SolarRadius = 6.955e10
	// CoolingFile is the model output file holding the radial profiles, formatted with the model id.
	CoolingFile = "coolfgr_all%s.dat"
	// AbundanceFile is the per-molecule cooling output, formatted with the model id and molecule.
	AbundanceFile = "cool1%s_%s.dat"
	// MaxProfileModels bounds a temperature figure unless forced.
	MaxProfileModels = 20

	temperatureCutoff = 1e17 // cm
)

// ColumnReader returns one named column of a model output file.
type ColumnReader interface {
	Column(ctx context.Context, modelID, file, keyword string) ([]float64, error)
}

// ProfileRun draws radial profiles of the cooling models of a grid.
type ProfileRun struct {
	Stars    []Star
	Columns  ColumnReader
	Renderer Renderer
	Force    bool // draw temperatures for more than MaxProfileModels stars
	Weighted bool // line contributions as weighted instead of normalized intensity
	// KeepOrder keeps line contributions in the order requested instead of by wavelength.
	KeepOrder bool
}

type radialProfile struct {
	index  int
	model  string
	radius []float64 // cm
	values []float64
}

// Velocities renders one velocity figure per star with a cooling model, with the average
// grain drift as a flat reference.
func (r *ProfileRun) Velocities(ctx context.Context) ([]Artifact, error) {
	profiles, err := r.load(ctx, "VEL")
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		logrus.Warn("no cooling models were calculated successfully; no velocity profiles to plot")
		return nil, nil
	}
	var arts []Artifact
	for _, p := range profiles {
		star := r.Stars[p.index]
		rr := r.rstar(p.radius, star)
		drift := make([]float64, len(rr))
		for i := range drift {
			drift[i] = star.AverageDrift
		}
		fig := ColumnFigure{
			Name:    fmt.Sprintf("velocity_%s_%d", p.model, p.index),
			Title:   fmt.Sprintf("Velocity Profile for Model %d (%s)", p.index, p.model),
			XAxis:   "R (R*)",
			YAxis:   "v (km/s)",
			Series:  []Series{{X: rr, Y: Scale(p.values, 1e-5)}, {X: rr, Y: drift}},
			KeyTags: []string{"Velocity", "Grain-size Weighted Drift"},
			XLog:    true,
		}
		art, err := r.Renderer.RenderColumns(ctx, fig)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
		}
		arts = append(arts, art)
	}
	return arts, nil
}

// Temperatures renders the gas temperature of every cooling model twice: against stellar
// radii and against radius in cm below 1e17.
func (r *ProfileRun) Temperatures(ctx context.Context) ([]Artifact, error) {
	if len(r.Stars) >= MaxProfileModels && !r.Force {
		logrus.Warnf("%d models requested; temperature profiles are drawn for fewer than %d unless forced", len(r.Stars), MaxProfileModels)
		return nil, nil
	}
	profiles, err := r.load(ctx, "TEMP")
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		logrus.Warn("no cooling models were calculated successfully; no temperature profiles to plot")
		return nil, nil
	}

	rstar := ColumnFigure{
		Name:  "temperature_profiles_rstar",
		XAxis: "R (R*)",
		YAxis: "T (K)",
		XLog:  true,
		YLog:  true,
	}
	cm := ColumnFigure{
		Name:  "temperature_profiles",
		XAxis: "r (cm)",
		YAxis: "Tg (K)",
		XLog:  true,
		YLog:  true,
		XMax:  Float64Ptr(2e17),
		YBounds: Bounds{
			Min: 3, Max: 5000, Set: true,
		},
	}
	for _, p := range profiles {
		star := r.Stars[p.index]
		rstar.Series = append(rstar.Series, Series{X: r.rstar(p.radius, star), Y: p.values})
		rstar.KeyTags = append(rstar.KeyTags, temperatureTag(star, p.model))
		cm.Series = append(cm.Series, CropToWindow(p.radius, p.values, 0, temperatureCutoff))
		cm.KeyTags = append(cm.KeyTags, fmt.Sprintf("Model %d", p.index+1))
	}

	var arts []Artifact
	for _, fig := range []ColumnFigure{cm, rstar} {
		art, err := r.Renderer.RenderColumns(ctx, fig)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
		}
		arts = append(arts, art)
	}
	return arts, nil
}

// Abundances renders, per star with a cooling model, the abundance n(molecule)/n(H2) of every
// molecule among its lines against radius in cm.
func (r *ProfileRun) Abundances(ctx context.Context) ([]Artifact, error) {
	var arts []Artifact
	for i := range r.Stars {
		star := r.Stars[i]
		model, ok := star.CoolingModelID()
		if !ok {
			continue
		}
		fig := ColumnFigure{
			Name:    fmt.Sprintf("abundance_profiles_%s", model),
			XAxis:   "r (cm)",
			YAxis:   "n_molec/n_H2",
			XLog:    true,
			YLog:    true,
			XMax:    Float64Ptr(1e18),
			YBounds: Bounds{Min: 1e-5, Max: 1e-3, Set: true},
		}
		for _, mol := range moleculesOf(star) {
			s, err := r.abundance(ctx, star, model, mol.Molecule)
			if errors.Is(err, ErrMissingModelOutput) {
				logrus.Warnf("skipping %s of model %s: %v", mol.Molecule, model, err)
				continue
			}
			if err != nil {
				return nil, err
			}
			fig.Series = append(fig.Series, s)
			fig.KeyTags = append(fig.KeyTags, mol.DisplayMolecule())
		}
		if len(fig.Series) == 0 {
			continue
		}
		art, err := r.Renderer.RenderColumns(ctx, fig)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
		}
		arts = append(arts, art)
	}
	if len(arts) == 0 {
		logrus.Warn("no cooling models were calculated successfully; no abundance profiles to plot")
	}
	return arts, nil
}

func (r *ProfileRun) abundance(ctx context.Context, star Star, model, molecule string) (Series, error) {
	file := fmt.Sprintf(AbundanceFile, model, molecule)
	var cols [3][]float64
	for k, keyword := range []string{"RADIUS", "N(H2)", "N(MOLEC)"} {
		col, err := r.Columns.Column(ctx, model, file, keyword)
		if err != nil {
			if errors.Is(err, ErrMissingModelOutput) {
				return Series{}, err
			}
			return Series{}, fmt.Errorf("reading %s of %s: %w", keyword, file, err)
		}
		cols[k] = col
	}
	radius, h2, mol := cols[0], cols[1], cols[2]
	n := min(len(radius), len(h2), len(mol))
	var out Series
	for i := 0; i < n; i++ {
		if h2[i] <= 0 {
			continue
		}
		x := radius[i]
		if star.RStar > 0 {
			x *= star.RStar * SolarRadius
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, mol[i]/h2[i])
	}
	return out, nil
}

// moleculesOf returns one completed transition per distinct molecule of star, ordered by
// molecule index.
func moleculesOf(star Star) []Transition {
	seen := make(map[string]bool)
	var out []Transition
	for _, t := range star.Lines {
		if !t.Completed() || seen[t.Molecule] {
			continue
		}
		seen[t.Molecule] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MoleculeIndex < out[j].MoleculeIndex })
	return out
}

// ContributionFile names the line-contribution table of a completed transition.
func ContributionFile(t Transition) string { return "sphinx_" + t.FileTag() + ".dat" }

// LineContributions renders, per star, the contribution of the requested lines as a function of
// impact parameter. An empty request selects every completed line. Lines are drawn by
// wavelength unless KeepOrder is set.
func (r *ProfileRun) LineContributions(ctx context.Context, keys []TransitionKey) ([]Artifact, error) {
	column := "NORM_INTENSITY"
	if r.Weighted {
		column = "WEIGHTED_INTENSITY"
	}
	var arts []Artifact
	for i := range r.Stars {
		star := r.Stars[i]
		lines := contributionLines(star, keys, r.KeepOrder)
		if len(lines) == 0 {
			continue
		}
		model := star.ModelIdentity()
		fig := ColumnFigure{
			Name:  fmt.Sprintf("linecontrib_%s_%d", model, i),
			Title: fmt.Sprintf("%s: Line Contributions for %s", star.Name, model),
			XAxis: "p (R*)",
			YAxis: "I(p) x g(p^2)",
			XLog:  true,
		}
		if !r.Weighted {
			fig.YBounds = Bounds{Min: -0.2, Max: 1.1, Set: true}
		}
		for _, t := range lines {
			file := ContributionFile(t)
			p, err := r.Columns.Column(ctx, t.ModelID, file, "P")
			var y []float64
			if err == nil {
				y, err = r.Columns.Column(ctx, t.ModelID, file, column)
			}
			if errors.Is(err, ErrMissingModelOutput) {
				logrus.Warnf("skipping contribution of %s: %v", t.Key(), err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("reading contribution of %s: %w", t.Key(), err)
			}
			n := min(len(p), len(y))
			fig.Series = append(fig.Series, Series{X: p[:n], Y: y[:n]})
			fig.KeyTags = append(fig.KeyTags, fmt.Sprintf("%s: %s", t.Molecule, t.Label))
		}
		if len(fig.Series) == 0 {
			continue
		}
		art, err := r.Renderer.RenderColumns(ctx, fig)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
		}
		arts = append(arts, art)
	}
	if len(arts) == 0 {
		logrus.Warn("no line contributions to plot")
	}
	return arts, nil
}

// contributionLines selects the completed lines of star named by keys, all completed lines when
// keys is empty.
func contributionLines(star Star, keys []TransitionKey, keepOrder bool) []Transition {
	rank := make(map[TransitionKey]int, len(keys))
	for i, k := range keys {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	var out []Transition
	for _, t := range star.Lines {
		if !t.Completed() {
			continue
		}
		if _, ok := rank[t.Key()]; len(keys) > 0 && !ok {
			continue
		}
		out = append(out, t)
	}
	if keepOrder {
		if len(keys) > 0 {
			sort.SliceStable(out, func(i, j int) bool { return rank[out[i].Key()] < rank[out[j].Key()] })
		}
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position() < out[j].Position() })
	return out
}

// load reads RADIUS and keyword for every star with a cooling model. Missing output is
// logged and skipped.
func (r *ProfileRun) load(ctx context.Context, keyword string) ([]radialProfile, error) {
	var out []radialProfile
	for i := range r.Stars {
		model, ok := r.Stars[i].CoolingModelID()
		if !ok {
			continue
		}
		file := fmt.Sprintf(CoolingFile, model)
		radius, err := r.Columns.Column(ctx, model, file, "RADIUS")
		if err == nil {
			var values []float64
			values, err = r.Columns.Column(ctx, model, file, keyword)
			if err == nil {
				n := min(len(radius), len(values))
				out = append(out, radialProfile{index: i, model: model, radius: radius[:n], values: values[:n]})
				continue
			}
		}
		if errors.Is(err, ErrMissingModelOutput) {
			logrus.Warnf("skipping model %s: %v", model, err)
			continue
		}
		return nil, fmt.Errorf("reading %s of model %s: %w", keyword, model, err)
	}
	return out, nil
}

func (r *ProfileRun) rstar(radius []float64, star Star) []float64 {
	if star.RStar == 0 {
		return radius
	}
	return Scale(radius, 1/(star.RStar*SolarRadius))
}

func temperatureTag(star Star, model string) string {
	if pacs, ok := star.PacsModelID(); ok {
		return fmt.Sprintf("%s,    %s,    Mdot = %.2e", model, pacs, star.MdotGas)
	}
	return model
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
