package gas

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/linetiles/linetiles/gas/stats"
)

// Instrument names an observational data provider.
type Instrument string

const (
	InstrumentPACS  Instrument = "PACS"
	InstrumentSPIRE Instrument = "SPIRE"
)

// SegmentProvider exposes the loaded observational segments of one instrument.
type SegmentProvider interface {
	Instrument() Instrument
	Segments() []Segment
}

// SpectrumMode selects the figures of a spectrum run.
type SpectrumMode string

const (
	SpectrumFull     SpectrumMode = "full"     // every segment as a tile of one figure
	SpectrumBands    SpectrumMode = "bands"    // one figure per segment, models over data
	SpectrumWindows  SpectrumMode = "windows"  // one figure per (window, segment)
	SpectrumLineList SpectrumMode = "linelist" // database line identifications per segment
)

// ValidSpectrumModes is the set of recognized spectrum modes.
var ValidSpectrumModes = map[SpectrumMode]bool{
	SpectrumFull: true, SpectrumBands: true, SpectrumWindows: true, SpectrumLineList: true,
}

// Window is a closed coordinate range.
type Window struct {
	Min float64
	Max float64
}

// SpectrumTiles returns one tile per segment, ordered by the first coordinate of each segment.
// Model series keep their position even when empty.
func SpectrumTiles(segments []Segment, spectra [][]Spectrum, labels []LineLabel, includeData bool) []TileRecord {
	tiles := make([]TileRecord, 0, len(segments))
	for j, seg := range segments {
		var series []Series
		if includeData {
			series = append(series, seg.Series())
		}
		series = append(series, spectraAt(spectra, j)...)
		tile := TileRecord{
			Title:  seg.Order,
			Series: series,
			Labels: []Label{{Text: seg.Order, X: 0.01, Y: 0.85}},
		}
		if len(seg.X) > 0 {
			tile.XMin, tile.XMax, tile.HasXRange = seg.X[0], seg.X[len(seg.X)-1], true
			tile.LineLabels = LabelsInWindow(labels, tile.XMin, tile.XMax)
		}
		if includeData {
			tile.Histogram = []int{0}
		}
		tiles = append(tiles, tile)
	}
	sort.SliceStable(tiles, func(i, j int) bool {
		if !tiles[i].HasXRange || !tiles[j].HasXRange {
			return tiles[i].HasXRange
		}
		return tiles[i].XMin < tiles[j].XMin
	})
	return tiles
}

// BandFigures returns one figure per segment with every model first and the data last.
func BandFigures(inst Instrument, segments []Segment, spectra [][]Spectrum, stars []Star, labels []LineLabel, includeData bool) []ColumnFigure {
	keytags := modelTags(stars, false)
	if includeData {
		keytags = append(keytags, fmt.Sprintf("%s Spectrum", inst))
	}
	figs := make([]ColumnFigure, 0, len(segments))
	for j, seg := range segments {
		series := spectraAt(spectra, j)
		fig := ColumnFigure{
			Name:       fmt.Sprintf("%s_%s", strings.ToLower(string(inst)), baseName(seg.Filename)),
			Title:      fmt.Sprintf("%s - %s", inst, seg.Order),
			XAxis:      "wavelength (micron)",
			YAxis:      "Fnu (Jy)",
			KeyTags:    keytags,
			LineLabels: labels,
		}
		if includeData {
			fig.Histogram = []int{len(series)}
			series = append(series, seg.Series())
		}
		fig.Series = series
		figs = append(figs, fig)
	}
	return figs
}

// WindowFigures crops every segment to w and returns a figure for each segment that overlaps
// it: the data first, then every model with data.
func WindowFigures(tag string, w Window, segments []Segment, spectra [][]Spectrum, labels []LineLabel, includeData bool) []ColumnFigure {
	var figs []ColumnFigure
	for j, seg := range segments {
		data := CropToWindow(seg.X, seg.Y, w.Min, w.Max)
		if data.Empty() {
			continue
		}
		var series []Series
		fig := ColumnFigure{
			Name:       fmt.Sprintf("%s_segment_%.1f-%.1f_%s", tag, w.Min, w.Max, baseName(seg.Filename)),
			XAxis:      "wavelength (micron)",
			YAxis:      "Fnu (Jy)",
			LineLabels: LabelsInWindow(labels, w.Min, w.Max),
		}
		if includeData {
			series = append(series, data)
			fig.Histogram = []int{0}
		}
		for _, s := range spectraAt(spectra, j) {
			if s.Empty() {
				continue
			}
			series = append(series, CropToWindow(s.X, s.Y, w.Min, w.Max))
		}
		fig.Series = series
		figs = append(figs, fig)
	}
	return figs
}

// IdentificationFigures returns one figure per segment with the data, every model with data,
// and the labels falling on the segment.
func IdentificationFigures(inst Instrument, segments []Segment, spectra [][]Spectrum, stars []Star, labels []LineLabel, includeModels bool) []ColumnFigure {
	figs := make([]ColumnFigure, 0, len(segments))
	for j, seg := range segments {
		series := []Series{seg.Series()}
		keytags := []string{fmt.Sprintf("%s %s", inst, seg.Filename)}
		if includeModels {
			keytags = append(keytags, modelTags(stars, true)...)
			for _, s := range spectraAt(spectra, j) {
				if !s.Empty() {
					series = append(series, s)
				}
			}
		}
		fig := ColumnFigure{
			Name:    "line_id_" + baseName(seg.Filename),
			XAxis:   "wavelength (micron)",
			YAxis:   "Fnu (Jy)",
			Series:  series,
			KeyTags: keytags,
		}
		if len(seg.X) > 0 {
			fig.LineLabels = LabelsInWindow(labels, floats.Min(seg.X), floats.Max(seg.X))
		}
		figs = append(figs, fig)
	}
	return figs
}

// Comparison is the goodness of fit of one model against one segment.
type Comparison struct {
	Star          string
	Segment       string
	ChiSquared    float64
	LogLikelihood float64
}

// CompareSegments fits every star's spectrum against the data of every segment on the same
// grid. Pairs with no model data or mismatched grids are skipped.
func CompareSegments(segments []Segment, spectra [][]Spectrum, stars []Star, noise float64, mode stats.Mode) ([]Comparison, error) {
	var out []Comparison
	for j, seg := range segments {
		for i, s := range spectraAt(spectra, j) {
			if s.Empty() || len(s.Y) != len(seg.Y) {
				continue
			}
			chi2, err := stats.ChiSquared(seg.Y, s.Y, []float64{noise}, 0, mode)
			if err != nil {
				return nil, fmt.Errorf("comparing %s: %w", seg.Filename, err)
			}
			ll, err := stats.LogLikelihood(seg.Y, s.Y, []float64{noise})
			if err != nil {
				return nil, fmt.Errorf("comparing %s: %w", seg.Filename, err)
			}
			out = append(out, Comparison{
				Star:          starName(&stars[i], i),
				Segment:       seg.Filename,
				ChiSquared:    chi2,
				LogLikelihood: ll,
			})
		}
	}
	return out, nil
}

// SpectrumRun draws observational segments together with convolved model spectra.
type SpectrumRun struct {
	Stars    []Star
	Data     SegmentProvider
	Cache    *ConvolutionCache
	Labels   *LabelGenerator // database labels; nil uses the catalog of the stars
	Renderer Renderer
	Mode     SpectrumMode
	Windows  []Window // SpectrumWindows only
	NoData   bool
	Refresh  bool
	Noise    float64 // > 0 enables comparisons
	ChiMode  stats.Mode
}

// SpectrumResult lists what a spectrum run produced.
type SpectrumResult struct {
	Artifacts   []Artifact
	Comparisons []Comparison
}

// Execute renders the figures of the selected mode.
func (r *SpectrumRun) Execute(ctx context.Context) (*SpectrumResult, error) {
	if !ValidSpectrumModes[r.Mode] {
		return nil, fmt.Errorf("%w: unknown spectrum mode %q", ErrConfiguration, r.Mode)
	}
	if r.Data == nil {
		return nil, fmt.Errorf("%w: no observational data given", ErrConfiguration)
	}
	segments := r.Data.Segments()
	res := &SpectrumResult{}
	if len(segments) == 0 {
		logrus.WithError(ErrEmptyResultSet).Warnf("no %s segments loaded; nothing to plot", r.Data.Instrument())
		return res, nil
	}

	includeModels := false
	for i := range r.Stars {
		if r.Stars[i].ModelIdentity() != "" {
			includeModels = true
		}
	}
	spectra := make([][]Spectrum, len(segments))
	if includeModels {
		got, err := r.Cache.GetOrCompute(ctx, r.Stars, segments, r.Refresh)
		if err != nil {
			return nil, err
		}
		spectra = got
	}

	labels, err := r.lineLabels(ctx, segments)
	if err != nil {
		return nil, err
	}
	inst := r.Data.Instrument()

	var figs []ColumnFigure
	switch r.Mode {
	case SpectrumFull:
		fig := TileFigure{
			Name:    fmt.Sprintf("%s_spectrum_full", strings.ToLower(string(inst))),
			Page:    Page{Index: 1, Grid: Grid{X: 1, Y: len(segments)}, Tiles: SpectrumTiles(segments, spectra, labels, !r.NoData)},
			KeyTags: modelTags(r.Stars, false),
			XAxis:   "wavelength (micron)",
			YAxis:   "Fnu (Jy)",
		}
		art, err := r.Renderer.RenderTiles(ctx, fig)
		if err != nil {
			return nil, err
		}
		res.Artifacts = append(res.Artifacts, art)
	case SpectrumBands:
		figs = BandFigures(inst, segments, spectra, r.Stars, labels, !r.NoData)
	case SpectrumWindows:
		tag := "sphinx"
		if r.Labels != nil {
			tag = "ll"
		}
		for _, w := range r.Windows {
			figs = append(figs, WindowFigures(tag, w, segments, spectra, labels, !r.NoData)...)
		}
	case SpectrumLineList:
		figs = IdentificationFigures(inst, segments, spectra, r.Stars, labels, includeModels)
	}

	for _, fig := range figs {
		art, err := r.Renderer.RenderColumns(ctx, fig)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fig.Name, err)
		}
		res.Artifacts = append(res.Artifacts, art)
	}

	if r.Noise > 0 && includeModels {
		mode := r.ChiMode
		if mode == "" {
			mode = stats.ModeDiff
		}
		cmp, err := CompareSegments(segments, spectra, r.Stars, r.Noise, mode)
		if err != nil {
			return nil, err
		}
		res.Comparisons = cmp
	}
	return res, nil
}

func (r *SpectrumRun) lineLabels(ctx context.Context, segments []Segment) ([]LineLabel, error) {
	if r.Labels == nil {
		if r.Mode == SpectrumWindows {
			var ts []Transition
			for i := range r.Stars {
				ts = append(ts, r.Stars[i].Lines...)
			}
			return PlotLabelsFromCatalog(ts), nil
		}
		return StarLabels(r.Stars), nil
	}
	lo, hi := segmentRange(segments)
	var settings *LineListSettings
	if len(r.Stars) > 0 {
		settings = r.Stars[0].LineList
	}
	return r.Labels.FromDatabase(ctx, lo, hi, FiltersFromSettings(settings))
}

func segmentRange(segments []Segment) (lo, hi float64) {
	first := true
	for _, s := range segments {
		if len(s.X) == 0 {
			continue
		}
		smin, smax := floats.Min(s.X), floats.Max(s.X)
		if first {
			lo, hi, first = smin, smax, false
			continue
		}
		lo, hi = min(lo, smin), max(hi, smax)
	}
	return lo, hi
}

func spectraAt(spectra [][]Spectrum, j int) []Series {
	if j >= len(spectra) {
		return nil
	}
	return append([]Series(nil), spectra[j]...)
}

func modelTags(stars []Star, onlyComputed bool) []string {
	var tags []string
	for i := range stars {
		id := stars[i].ModelIdentity()
		if onlyComputed && id == "" {
			continue
		}
		tags = append(tags, fmt.Sprintf("Model %d: %s", i+1, id))
	}
	return tags
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".dat")
}
