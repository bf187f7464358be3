package gas

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultYPadding is the headroom factor applied to the upper value bound of a tile.
const DefaultYPadding = 1.3

// Series is a co-indexed (coordinate, intensity) pair of sequences.
type Series struct {
	X []float64
	Y []float64
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Y) }

// Empty reports whether the series carries no points.
func (s Series) Empty() bool { return len(s.X) == 0 || len(s.Y) == 0 }

// Spectrum is a model spectrum convolved with an instrument response.
type Spectrum = Series

// ModelSeries is the contribution of one model to a tile. An absent model still occupies its
// position so that series stay aligned with legend keys.
type ModelSeries struct {
	Series  Series
	Present bool
}

// PresentSeries wraps s as a model contribution.
func PresentSeries(s Series) ModelSeries { return ModelSeries{Series: s, Present: true} }

// AbsentSeries is the contribution of a model with no value for a transition.
func AbsentSeries() ModelSeries { return ModelSeries{} }

// CropToWindow returns the points with lo <= x <= hi, in input order.
func CropToWindow(x, y []float64, lo, hi float64) Series {
	n := min(len(x), len(y))
	out := Series{X: []float64{}, Y: []float64{}}
	for i := 0; i < n; i++ {
		if x[i] >= lo && x[i] <= hi {
			out.X = append(out.X, x[i])
			out.Y = append(out.Y, y[i])
		}
	}
	return out
}

// MergeSeries lays out the series of one tile: the observed series first (when included and
// available), then one series per model (when models are included). Absent models yield an
// empty series in place.
func MergeSeries(observed *Series, models []ModelSeries, includeData, includeModels bool) []Series {
	var out []Series
	if includeData && observed != nil {
		out = append(out, *observed)
	}
	if !includeModels {
		return out
	}
	for _, m := range models {
		if !m.Present {
			out = append(out, Series{})
			continue
		}
		out = append(out, m.Series)
	}
	return out
}

// Bounds is a value range for a tile. Set is false when no data fell in the window, in which
// case the renderer scales automatically.
type Bounds struct {
	Min float64
	Max float64
	Set bool
}

// ComputeBounds returns the extrema of every non-empty series restricted to [lo, hi]. The
// window is applied before taking extrema and NaN values are ignored; the maximum is scaled by pad.
func ComputeBounds(series []Series, lo, hi, pad float64) Bounds {
	var b Bounds
	for _, s := range series {
		if s.Empty() {
			continue
		}
		ys := finite(CropToWindow(s.X, s.Y, lo, hi).Y)
		if len(ys) == 0 {
			continue
		}
		smin, smax := floats.Min(ys), floats.Max(ys)
		if !b.Set {
			b = Bounds{Min: smin, Max: smax, Set: true}
			continue
		}
		b.Min = min(b.Min, smin)
		b.Max = max(b.Max, smax)
	}
	if b.Set {
		b.Max *= pad
	}
	return b
}

func finite(ys []float64) []float64 {
	out := ys[:0:0]
	for _, y := range ys {
		if !math.IsNaN(y) {
			out = append(out, y)
		}
	}
	return out
}

// VelocityWindow returns the x range centred on vlsr spanning factor terminal velocities on each side.
func VelocityWindow(vlsr, vinf, factor float64) (lo, hi float64) {
	return vlsr - factor*vinf, vlsr + factor*vinf
}

// Shift returns a copy of xs offset by d.
func Shift(xs []float64, d float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	floats.AddConst(d, out)
	return out
}

// Scale returns a copy of xs multiplied by f.
func Scale(xs []float64, f float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	floats.Scale(f, out)
	return out
}
