// Package stats compares observed and model intensities.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mode selects the chi-squared flavour.
type Mode string

const (
	// ModeDiff is the standard reduced chi-squared of the differences.
	ModeDiff Mode = "diff"
	// ModeLog redistributes data/model ratios on a logarithmic scale so that deviations
	// below and above one weigh the same.
	ModeLog Mode = "log"
	// ModeRel compares log ratios scaled by the relative error of the data.
	ModeRel Mode = "rel"
)

// ValidModes is the set of recognized chi-squared modes.
var ValidModes = map[Mode]bool{ModeDiff: true, ModeLog: true, ModeRel: true}

// ErrDegreesOfFreedom is returned when there are not more points than fitted parameters.
var ErrDegreesOfFreedom = errors.New("not enough points for the degrees of freedom")

// ChiSquared returns the reduced chi-squared of data against model. noise holds either one
// value for every point or one value per point; ndf is the number of free parameters.
func ChiSquared(data, model, noise []float64, ndf int, mode Mode) (float64, error) {
	if !ValidModes[mode] {
		return 0, fmt.Errorf("unknown chi-squared mode %q; valid: diff, log, rel", mode)
	}
	sigma, err := expand(data, model, noise)
	if err != nil {
		return 0, err
	}
	dof := len(data) - ndf - 1
	if dof <= 0 {
		return 0, fmt.Errorf("%w: %d points, %d parameters", ErrDegreesOfFreedom, len(data), ndf)
	}

	terms := make([]float64, len(data))
	for i := range data {
		d, m, n := data[i], model[i], sigma[i]
		switch mode {
		case ModeDiff:
			terms[i] = math.Pow(d-m, 2) / math.Pow(n, 2)
		case ModeLog:
			r := math.Pow(10, math.Abs(math.Log10(d/m))) - 1
			terms[i] = r * r / math.Pow(n/m, 2)
		case ModeRel:
			terms[i] = math.Abs(math.Log10(d/m)) / (n / d)
		}
	}
	return floats.Sum(terms) / float64(dof), nil
}

// LogLikelihood returns the Gaussian log-likelihood of data given model and noise.
func LogLikelihood(data, model, noise []float64) (float64, error) {
	sigma, err := expand(data, model, noise)
	if err != nil {
		return 0, err
	}
	terms := make([]float64, len(data))
	for i := range data {
		z := (data[i] - model[i]) / sigma[i]
		terms[i] = -math.Log(math.Sqrt(2*math.Pi)) - math.Log(sigma[i]) - 0.5*z*z
	}
	return floats.Sum(terms), nil
}

// EstimateNoise returns the sample standard deviation of residuals, used when no noise level
// is known for a spectrum.
func EstimateNoise(residuals []float64) float64 {
	if len(residuals) < 2 {
		return 0
	}
	return stat.StdDev(residuals, nil)
}

// Residuals returns data - model.
func Residuals(data, model []float64) ([]float64, error) {
	if len(data) != len(model) {
		return nil, fmt.Errorf("data has %d points, model %d", len(data), len(model))
	}
	out := make([]float64, len(data))
	floats.SubTo(out, data, model)
	return out, nil
}

func expand(data, model, noise []float64) ([]float64, error) {
	if len(data) != len(model) {
		return nil, fmt.Errorf("data has %d points, model %d", len(data), len(model))
	}
	switch len(noise) {
	case 1:
		out := make([]float64, len(data))
		for i := range out {
			out[i] = noise[0]
		}
		return out, nil
	case len(data):
		return noise, nil
	default:
		return nil, fmt.Errorf("noise needs 1 or %d values, got %d", len(data), len(noise))
	}
}
