package gas

import (
	"context"
	"fmt"
	"sync"
)

func line(molecule, label, telescope, model string, wavelength float64) Transition {
	return Transition{Molecule: molecule, Label: label, Telescope: telescope, ModelID: model, Wavelength: wavelength}
}

func star(name, model string, lines ...Transition) Star {
	return Star{Name: name, CoolingModel: StringPtr(model), VLSR: 0, TerminalVelocity: 10, Lines: lines}
}

// spyConvolver counts calls per model and returns one flat spectrum per segment.
type spyConvolver struct {
	mu    sync.Mutex
	calls map[string]int
	empty map[string]bool // models reported as not convolved
	fail  error
}

func newSpyConvolver() *spyConvolver {
	return &spyConvolver{calls: make(map[string]int), empty: make(map[string]bool)}
}

func (s *spyConvolver) Convolve(_ context.Context, st Star, segments []Segment) ([]Spectrum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	model := st.ModelIdentity()
	s.calls[model]++
	if s.fail != nil {
		return nil, s.fail
	}
	if s.empty[model] {
		return nil, fmt.Errorf("%w: %s", ErrNoConvolution, model)
	}
	out := make([]Spectrum, len(segments))
	for j, seg := range segments {
		y := make([]float64, len(seg.X))
		for i := range y {
			y[i] = float64(s.calls[model])
		}
		out[j] = Spectrum{X: append([]float64(nil), seg.X...), Y: y}
	}
	return out, nil
}

func (s *spyConvolver) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// countingRecorder counts every Recorder event.
type countingRecorder struct {
	convolutions, hits, misses, pages, tiles, missingTransitions, missingOutputs int
}

func (r *countingRecorder) ConvolutionComputed(string) { r.convolutions++ }
func (r *countingRecorder) CacheHit()                  { r.hits++ }
func (r *countingRecorder) CacheMiss()                 { r.misses++ }
func (r *countingRecorder) PageEmitted()               { r.pages++ }
func (r *countingRecorder) TileEmitted()               { r.tiles++ }
func (r *countingRecorder) MissingTransition()         { r.missingTransitions++ }
func (r *countingRecorder) MissingModelOutput()        { r.missingOutputs++ }

// fakeRenderer keeps every figure it is asked to draw.
type fakeRenderer struct {
	tiles   []TileFigure
	columns []ColumnFigure
	fail    error
}

func (f *fakeRenderer) RenderTiles(_ context.Context, fig TileFigure) (Artifact, error) {
	if f.fail != nil {
		return Artifact{}, f.fail
	}
	f.tiles = append(f.tiles, fig)
	return Artifact{Name: fig.Name, Key: fig.Name + ".png", Size: 1}, nil
}

func (f *fakeRenderer) RenderColumns(_ context.Context, fig ColumnFigure) (Artifact, error) {
	if f.fail != nil {
		return Artifact{}, f.fail
	}
	f.columns = append(f.columns, fig)
	return Artifact{Name: fig.Name, Key: fig.Name + ".png", Size: 1}, nil
}

// fakeProfiles serves a triangular profile for every completed transition except those of
// models listed in missing.
type fakeProfiles struct {
	missing map[string]bool
	nans    bool
}

func (f fakeProfiles) ModelProfile(_ context.Context, t Transition) (ModelProfile, error) {
	if f.missing[t.ModelID] {
		return ModelProfile{}, fmt.Errorf("%w: %s", ErrMissingModelOutput, t.ModelID)
	}
	v := []float64{-20, -10, 0, 10, 20}
	return ModelProfile{
		Velocity:          v,
		Tmb:               []float64{0, 1, 2, 1, 0},
		IntrinsicVelocity: v,
		IntrinsicFlux:     []float64{0, 1e-23, 2e-23, 1e-23, 0},
		NaNsPresent:       f.nans,
	}, nil
}

type fakeObserved map[TransitionKey]Series

func (f fakeObserved) ObservedProfile(_ context.Context, t Transition) (Series, bool, error) {
	s, ok := f[t.Key()]
	return s, ok, nil
}
