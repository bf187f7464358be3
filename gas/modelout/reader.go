package modelout

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/linetiles/linetiles/gas"
)

// Profile table columns.
const (
	ColVelocity          = "VEL"
	ColTmb               = "TMB"
	ColIntrinsicVelocity = "VEL_INTRINSIC"
	ColIntrinsicFlux     = "FLUX_INTRINSIC"
)

// Reader resolves model output under Dir/<model id>/.
type Reader struct {
	Dir string
}

var (
	_ gas.ModelProfileReader = (*Reader)(nil)
	_ gas.ColumnReader       = (*Reader)(nil)
)

// Path returns the location of file within the output of modelID.
func (r *Reader) Path(modelID, file string) string {
	return filepath.Join(r.Dir, modelID, file)
}

// Column returns one column of a model output file. A missing file or column wraps
// gas.ErrMissingModelOutput.
func (r *Reader) Column(ctx context.Context, modelID, file, keyword string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadTable(r.Path(modelID, file))
	if err != nil {
		return nil, err
	}
	col, ok := t.Column(keyword)
	if !ok {
		return nil, fmt.Errorf("%w: no column %s in %s", gas.ErrMissingModelOutput, keyword, file)
	}
	return col, nil
}

// ProfileFile names the line-profile table of a transition.
func ProfileFile(t gas.Transition) string {
	return "lineprofile_" + t.FileTag() + ".dat"
}

// ModelProfile implements gas.ModelProfileReader. Intrinsic columns are optional.
func (r *Reader) ModelProfile(ctx context.Context, t gas.Transition) (gas.ModelProfile, error) {
	if err := ctx.Err(); err != nil {
		return gas.ModelProfile{}, err
	}
	if !t.Completed() {
		return gas.ModelProfile{}, fmt.Errorf("%w: %s has no model", gas.ErrMissingModelOutput, t.Key())
	}
	tbl, err := ReadTable(r.Path(t.ModelID, ProfileFile(t)))
	if err != nil {
		return gas.ModelProfile{}, err
	}
	vel, okV := tbl.Column(ColVelocity)
	tmb, okT := tbl.Column(ColTmb)
	if !okV || !okT {
		return gas.ModelProfile{}, fmt.Errorf("%w: %s lacks %s or %s", gas.ErrMissingModelOutput, ProfileFile(t), ColVelocity, ColTmb)
	}
	p := gas.ModelProfile{
		Velocity:    vel,
		Tmb:         tmb,
		NaNsPresent: tbl.HasNaN(ColTmb, ColIntrinsicFlux),
	}
	p.IntrinsicVelocity, _ = tbl.Column(ColIntrinsicVelocity)
	p.IntrinsicFlux, _ = tbl.Column(ColIntrinsicFlux)
	return p, nil
}
