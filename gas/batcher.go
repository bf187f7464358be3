package gas

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas/trace"
)

// Counterpart is a star's own copy of a transition being tiled. Found is false when the star
// does not carry the transition.
type Counterpart struct {
	Star       *Star
	Transition Transition
	Found      bool
}

// TileAssembler builds the tile of one transition from its per-star counterparts.
type TileAssembler interface {
	Assemble(ctx context.Context, t Transition, counterparts []Counterpart) (TileRecord, error)
}

// AssemblerFunc adapts a function to TileAssembler.
type AssemblerFunc func(ctx context.Context, t Transition, counterparts []Counterpart) (TileRecord, error)

// Assemble calls f.
func (f AssemblerFunc) Assemble(ctx context.Context, t Transition, cps []Counterpart) (TileRecord, error) {
	return f(ctx, t, cps)
}

// BatchSummary reports the outcome of one batching pass.
type BatchSummary struct {
	Pages              int
	Tiles              int
	MissingTransitions int // transitions lacking a counterpart in at least one star
}

// BatchOption configures a Batcher.
type BatchOption func(*Batcher)

// WithBatchRecorder attaches a Recorder.
func WithBatchRecorder(r Recorder) BatchOption {
	return func(b *Batcher) { b.rec = r }
}

// WithBatchTrace records pages and missing transitions in rt under the pass name.
func WithBatchTrace(rt *trace.RunTrace, pass string) BatchOption {
	return func(b *Batcher) {
		b.trace = rt
		b.pass = pass
	}
}

// Batcher drains an ordered transition list into pages of at most Cells() tiles.
//
// State machine: Draining → (page full | list empty) → Draining | Done. Every transition
// taken from the list lands in exactly one tile of exactly one page; pages are never empty.
type Batcher struct {
	cfg      BatchConfig
	stars    []Star
	assemble TileAssembler
	rec      Recorder
	trace    *trace.RunTrace
	pass     string
}

// NewBatcher validates cfg and returns a Batcher over the given stars.
func NewBatcher(cfg BatchConfig, stars []Star, assemble TileAssembler, opts ...BatchOption) (*Batcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if assemble == nil {
		return nil, fmt.Errorf("%w: nil tile assembler", ErrConfiguration)
	}
	b := &Batcher{cfg: cfg, stars: stars, assemble: assemble, rec: NopRecorder{}}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run tiles transitions in order and hands each page to emit. Cancellation is honored between
// pages; a page handed to emit is always complete.
func (b *Batcher) Run(ctx context.Context, transitions []Transition, emit func(Page) error) (BatchSummary, error) {
	var sum BatchSummary
	cells := b.cfg.Cells()
	queue := transitions

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		n := min(cells, len(queue))
		popped := queue[:n]
		queue = queue[n:]

		page := Page{Index: sum.Pages + 1, Grid: b.cfg.Grid, Tiles: make([]TileRecord, 0, n)}
		record := trace.PageRecord{Pass: b.pass, Index: page.Index}
		for _, t := range popped {
			cps, lacking := b.counterparts(t.Key())
			if len(lacking) > 0 {
				sum.MissingTransitions++
				b.rec.MissingTransition()
				b.trace.RecordMissing(trace.MissingRecord{Pass: b.pass, Transition: t.Key().String(), Models: lacking})
			}
			tile, err := b.assemble.Assemble(ctx, t, cps)
			if err != nil {
				return sum, fmt.Errorf("assembling tile for %s: %w", t.Key(), err)
			}
			tile.Key = t.Key()
			page.Tiles = append(page.Tiles, tile)
			record.Transitions = append(record.Transitions, t.Key().String())
			b.rec.TileEmitted()
		}

		if err := emit(page); err != nil {
			return sum, fmt.Errorf("emitting page %d: %w", page.Index, err)
		}
		b.rec.PageEmitted()
		b.trace.RecordPage(record)
		sum.Pages++
		sum.Tiles += len(page.Tiles)
		logrus.Debugf("page %d: %d tiles, %d transitions left", page.Index, len(page.Tiles), len(queue))
	}

	if sum.MissingTransitions > 0 {
		logrus.Warnf("%d requested transitions were not found for every model", sum.MissingTransitions)
	}
	return sum, nil
}

// counterparts resolves the star copies of a transition and names the stars that lack it.
func (b *Batcher) counterparts(key TransitionKey) ([]Counterpart, []string) {
	cps := make([]Counterpart, len(b.stars))
	var lacking []string
	for i := range b.stars {
		t, ok := b.stars[i].Transition(key)
		cps[i] = Counterpart{Star: &b.stars[i], Transition: t, Found: ok}
		if !ok {
			lacking = append(lacking, starName(&b.stars[i], i))
		}
	}
	return cps, lacking
}

func starName(s *Star, i int) string {
	if s.Name != "" {
		return s.Name
	}
	if id := s.ModelIdentity(); id != "" {
		return id
	}
	return fmt.Sprintf("model %d", i+1)
}
