package gas

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas/trace"
)

// Segment is one observational data file: coordinates, fluxes and its labels.
type Segment struct {
	X        []float64
	Y        []float64
	Filename string
	Order    string // display-order label, e.g. "B2A"
}

// Series returns the segment as a Series.
func (s Segment) Series() Series { return Series{X: s.X, Y: s.Y} }

// Convolver produces the instrument-convolved spectrum of a star, one per segment.
// It returns ErrNoConvolution when nothing was computed for the star.
type Convolver interface {
	Convolve(ctx context.Context, star Star, segments []Segment) ([]Spectrum, error)
}

// SpectrumKey identifies a persisted spectrum.
type SpectrumKey struct {
	Model   string
	Segment string // "<segment index>:<segment file name>"
}

// entryKey identifies an in-memory spectrum by model and segment position.
type entryKey struct {
	model   string
	segment int
}

// SpectrumBacking persists convolved spectra across runs.
type SpectrumBacking interface {
	Load(ctx context.Context, key SpectrumKey) (Spectrum, bool, error)
	Save(ctx context.Context, key SpectrumKey, s Spectrum) error
}

// CacheOption configures a ConvolutionCache.
type CacheOption func(*ConvolutionCache)

// WithBacking makes the cache consult b before convolving and persist what it computes.
func WithBacking(b SpectrumBacking) CacheOption {
	return func(c *ConvolutionCache) { c.backing = b }
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) CacheOption {
	return func(c *ConvolutionCache) { c.rec = r }
}

// WithCacheTrace records every lookup in rt.
func WithCacheTrace(rt *trace.RunTrace) CacheOption {
	return func(c *ConvolutionCache) { c.trace = rt }
}

// ConvolutionCache memoizes convolved model spectra by (model identity, segment index).
// It is owned by one pipeline invocation. Calls are serialized, so a refresh never
// interleaves with another refresh or read.
type ConvolutionCache struct {
	mu      sync.Mutex
	conv    Convolver
	backing SpectrumBacking
	rec     Recorder
	trace   *trace.RunTrace
	entries map[entryKey]Spectrum
}

// NewConvolutionCache creates an empty cache in front of conv.
func NewConvolutionCache(conv Convolver, opts ...CacheOption) *ConvolutionCache {
	c := &ConvolutionCache{
		conv:    conv,
		rec:     NopRecorder{},
		entries: make(map[entryKey]Spectrum),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the convolved spectra indexed [segment][star]. Stars whose entries are
// not cached are convolved once; with refresh every star is convolved again. Stars without a
// model identity, or for which the convolver has nothing, contribute empty spectra.
func (c *ConvolutionCache) GetOrCompute(ctx context.Context, stars []Star, segments []Segment, refresh bool) ([][]Spectrum, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range stars {
		model := stars[i].ModelIdentity()
		if model == "" {
			continue
		}
		if !refresh && c.cachedLocked(model, segments) {
			c.rec.CacheHit()
			c.trace.RecordCache(trace.CacheRecord{Model: model, Hit: true})
			continue
		}
		c.rec.CacheMiss()
		computed, err := c.fillLocked(ctx, stars[i], model, segments, refresh)
		if err != nil {
			return nil, err
		}
		c.trace.RecordCache(trace.CacheRecord{Model: model, Computed: computed})
	}

	out := make([][]Spectrum, len(segments))
	for j := range segments {
		out[j] = make([]Spectrum, len(stars))
		for i := range stars {
			model := stars[i].ModelIdentity()
			if model == "" {
				continue
			}
			out[j][i] = c.entries[entryKey{model: model, segment: j}]
		}
	}
	return out, nil
}

// Invalidate drops every cached entry.
func (c *ConvolutionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[entryKey]Spectrum)
}

// Len returns the number of cached (model, segment) entries.
func (c *ConvolutionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ConvolutionCache) cachedLocked(model string, segments []Segment) bool {
	for j := range segments {
		if _, ok := c.entries[entryKey{model: model, segment: j}]; !ok {
			return false
		}
	}
	return true
}

// fillLocked populates the entries of one model and reports whether the convolver produced them.
func (c *ConvolutionCache) fillLocked(ctx context.Context, star Star, model string, segments []Segment, refresh bool) (bool, error) {
	if !refresh && c.backing != nil {
		loaded, err := c.loadLocked(ctx, model, segments)
		if err != nil {
			return false, err
		}
		if loaded {
			return false, nil
		}
	}

	spectra, err := c.conv.Convolve(ctx, star, segments)
	computed := false
	switch {
	case errors.Is(err, ErrNoConvolution):
		logrus.Warnf("no convolved spectra for model %s; its series stay empty", model)
		spectra = nil
	case err != nil:
		return false, fmt.Errorf("convolving model %s: %w", model, err)
	default:
		computed = true
		c.rec.ConvolutionComputed(model)
	}

	for j := range segments {
		var s Spectrum
		if j < len(spectra) {
			s = spectra[j]
		}
		c.entries[entryKey{model: model, segment: j}] = s
		if c.backing != nil && !s.Empty() {
			key := BackingKey(model, j, segments[j])
			if err := c.backing.Save(ctx, key, s); err != nil {
				logrus.WithError(err).Warnf("spectrum %s/%s kept in memory only", model, key.Segment)
			}
		}
	}
	return computed, nil
}

// loadLocked fills the entries of model from the backing store. It only succeeds when every
// segment is present, so a partially persisted model is convolved again.
func (c *ConvolutionCache) loadLocked(ctx context.Context, model string, segments []Segment) (bool, error) {
	loaded := make([]Spectrum, len(segments))
	for j, seg := range segments {
		key := BackingKey(model, j, seg)
		s, ok, err := c.backing.Load(ctx, key)
		if err != nil {
			return false, fmt.Errorf("loading spectrum %s/%s: %w", model, key.Segment, err)
		}
		if !ok {
			return false, nil
		}
		loaded[j] = s
	}
	for j, s := range loaded {
		c.entries[entryKey{model: model, segment: j}] = s
	}
	return true, nil
}

// BackingKey is the persisted key of the spectrum of model for the segment at index j.
// Segments may share a file name or have none, so the index is part of the key.
func BackingKey(model string, j int, seg Segment) SpectrumKey {
	return SpectrumKey{Model: model, Segment: fmt.Sprintf("%d:%s", j, seg.Filename)}
}
