package gas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// IntrinsicFluxScale converts intrinsic fluxes (erg s-1 cm-2 Hz-1) to Jy.
const IntrinsicFluxScale = 1e23

// ModelProfile is a simulated line profile of one transition.
type ModelProfile struct {
	Velocity          []float64 // km/s relative to the source
	Tmb               []float64 // K, beam convolved
	IntrinsicVelocity []float64 // km/s relative to the source
	IntrinsicFlux     []float64 // erg s-1 cm-2 Hz-1
	NaNsPresent       bool
}

// ModelProfileReader returns the simulated profile of a completed transition. It wraps
// ErrMissingModelOutput when the model output does not exist.
type ModelProfileReader interface {
	ModelProfile(ctx context.Context, t Transition) (ModelProfile, error)
}

// ObservedProfileReader returns the observed line profile of a transition, if any.
type ObservedProfileReader interface {
	ObservedProfile(ctx context.Context, t Transition) (Series, bool, error)
}

// LineProfileAssembler builds line-profile tiles: observed profile first, then one series per
// star, on a velocity window around the systemic velocity.
type LineProfileAssembler struct {
	Models         ModelProfileReader
	Observed       ObservedProfileReader // nil disables data
	IncludeData    bool
	IncludeModels  bool
	Intrinsic      bool // intrinsic profiles in Jy instead of beam-convolved Tmb
	TelescopeLabel bool
	VLSR           float64
	VInf           float64
	VGFactor       float64
	Padding        float64
	Recorder       Recorder
}

var _ TileAssembler = (*LineProfileAssembler)(nil)

// Assemble implements TileAssembler.
func (a *LineProfileAssembler) Assemble(ctx context.Context, t Transition, cps []Counterpart) (TileRecord, error) {
	rec := a.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}

	var observed *Series
	if a.IncludeData && a.Observed != nil {
		s, ok, err := a.Observed.ObservedProfile(ctx, t)
		if err != nil {
			return TileRecord{}, fmt.Errorf("observed profile: %w", err)
		}
		if ok && !s.Empty() {
			observed = &s
		}
	}

	models := make([]ModelSeries, len(cps))
	nans := false
	if a.IncludeModels {
		for i, cp := range cps {
			if !cp.Found || !cp.Transition.Completed() {
				models[i] = AbsentSeries()
				continue
			}
			p, err := a.Models.ModelProfile(ctx, cp.Transition)
			if errors.Is(err, ErrMissingModelOutput) {
				rec.MissingModelOutput()
				logrus.Debugf("no model output for %s in model %s", t.Key(), cp.Transition.ModelID)
				models[i] = AbsentSeries()
				continue
			}
			if err != nil {
				return TileRecord{}, fmt.Errorf("model profile %s: %w", cp.Transition.ModelID, err)
			}
			nans = nans || p.NaNsPresent
			models[i] = PresentSeries(a.profileSeries(p))
		}
	}

	tile := TileRecord{
		Series: MergeSeries(observed, models, a.IncludeData, a.IncludeModels),
		Labels: []Label{
			{Text: t.DisplayMolecule(), X: 0.05, Y: 0.87},
			{Text: t.Label, X: 0.05, Y: 0.76},
		},
		HasXRange: true,
	}
	if a.TelescopeLabel {
		tile.Labels = append(tile.Labels, Label{Text: telescopeText(t.Telescope, nans), X: 0.75, Y: 0.90})
	}
	tile.XMin, tile.XMax = VelocityWindow(a.VLSR, a.VInf, a.VGFactor)
	pad := a.Padding
	if pad == 0 {
		pad = DefaultYPadding
	}
	tile.YBounds = ComputeBounds(tile.Series, tile.XMin, tile.XMax, pad)
	if observed != nil {
		tile.Histogram = []int{0}
	}
	return tile, nil
}

func (a *LineProfileAssembler) profileSeries(p ModelProfile) Series {
	if a.Intrinsic {
		return Series{X: Shift(p.IntrinsicVelocity, a.VLSR), Y: Scale(p.IntrinsicFlux, IntrinsicFluxScale)}
	}
	return Series{X: Shift(p.Velocity, a.VLSR), Y: p.Tmb}
}

// telescopeText strips the -H2O suffix and flags profiles computed with NaNs.
func telescopeText(telescope string, nans bool) string {
	s := strings.ReplaceAll(telescope, "-H2O", "")
	if nans {
		return s + "*"
	}
	return s
}
