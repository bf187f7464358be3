// Package obs loads observational spectra: PACS and SPIRE segments, observed line
// profiles, and the convolved model spectra written next to them.
package obs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas"
)

// Bands recognized in segment file names, per instrument.
var Bands = map[gas.Instrument][]string{
	gas.InstrumentPACS:  {"B2A", "B2B", "B3A", "R1A", "R1B"},
	gas.InstrumentSPIRE: {"SSW", "SLW"},
}

// Provider holds the segments of one instrument.
type Provider struct {
	instrument gas.Instrument
	segments   []gas.Segment
}

var _ gas.SegmentProvider = (*Provider)(nil)

// Load reads every *.dat file in dir as a two-column segment (micron, Jy), ordered by name.
func Load(inst gas.Instrument, dir string) (*Provider, error) {
	if _, ok := Bands[inst]; !ok {
		return nil, fmt.Errorf("%w: unknown instrument %q", gas.ErrConfiguration, inst)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.dat"))
	if err != nil {
		return nil, fmt.Errorf("glob %s segments: %w", inst, err)
	}
	sort.Strings(files)
	p := &Provider{instrument: inst}
	for _, f := range files {
		x, y, err := ReadColumns(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		p.segments = append(p.segments, gas.Segment{
			X:        x,
			Y:        y,
			Filename: filepath.Base(f),
			Order:    bandOf(inst, filepath.Base(f)),
		})
	}
	if len(p.segments) == 0 {
		logrus.Warnf("no %s data found in %s", inst, dir)
	}
	return p, nil
}

// NewProvider wraps already loaded segments.
func NewProvider(inst gas.Instrument, segments []gas.Segment) *Provider {
	return &Provider{instrument: inst, segments: segments}
}

// Instrument implements gas.SegmentProvider.
func (p *Provider) Instrument() gas.Instrument { return p.instrument }

// Segments implements gas.SegmentProvider.
func (p *Provider) Segments() []gas.Segment {
	return append([]gas.Segment(nil), p.segments...)
}

func bandOf(inst gas.Instrument, name string) string {
	upper := strings.ToUpper(name)
	for _, b := range Bands[inst] {
		if strings.Contains(upper, b) {
			return b
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ReadColumns reads the first two numeric columns of a whitespace-separated file.
// Comment lines start with '#' or '!'.
func ReadColumns(path string) (x, y []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns", n)
		}
		a, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", n, err)
		}
		b, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", n, err)
		}
		x, y = append(x, a), append(y, b)
	}
	return x, y, sc.Err()
}

// ReadWindows reads wavelength windows, one "min max" pair per line.
func ReadWindows(path string) ([]gas.Window, error) {
	lo, hi, err := ReadColumns(path)
	if err != nil {
		return nil, fmt.Errorf("reading windows: %w", err)
	}
	ws := make([]gas.Window, len(lo))
	for i := range lo {
		if lo[i] > hi[i] {
			return nil, fmt.Errorf("%w: window %d has min %g above max %g", gas.ErrConfiguration, i, lo[i], hi[i])
		}
		ws[i] = gas.Window{Min: lo[i], Max: hi[i]}
	}
	return ws, nil
}

// Profiles reads observed line profiles (km/s, K) named by Transition.DataFile.
type Profiles struct {
	Dir string
}

var _ gas.ObservedProfileReader = (*Profiles)(nil)

// ObservedProfile implements gas.ObservedProfileReader. A transition without a data file,
// or whose file is absent, has no observed profile.
func (p *Profiles) ObservedProfile(ctx context.Context, t gas.Transition) (gas.Series, bool, error) {
	if err := ctx.Err(); err != nil {
		return gas.Series{}, false, err
	}
	if t.DataFile == "" {
		return gas.Series{}, false, nil
	}
	path := t.DataFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir, path)
	}
	x, y, err := ReadColumns(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("no observed profile for %s at %s", t.Key(), path)
		return gas.Series{}, false, nil
	}
	if err != nil {
		return gas.Series{}, false, fmt.Errorf("observed profile %s: %w", t.Key(), err)
	}
	return gas.Series{X: x, Y: y}, true, nil
}

// FileConvolver reads the instrument-convolved spectra written by the radiative-transfer
// code as Dir/<model>/sphinx_<segment file>.
type FileConvolver struct {
	Dir string
}

var _ gas.Convolver = (*FileConvolver)(nil)

// SphinxFile names the convolved spectrum of a segment.
func SphinxFile(segment string) string { return "sphinx_" + segment }

// Convolve implements gas.Convolver. Segments without a convolved file yield an empty
// spectrum; when no segment has one it returns gas.ErrNoConvolution.
func (c *FileConvolver) Convolve(ctx context.Context, star gas.Star, segments []gas.Segment) ([]gas.Spectrum, error) {
	model := star.ModelIdentity()
	if model == "" {
		return nil, fmt.Errorf("%w: star %q has no model", gas.ErrNoConvolution, star.Name)
	}
	out := make([]gas.Spectrum, len(segments))
	found := 0
	for j, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, y, err := ReadColumns(filepath.Join(c.Dir, model, SphinxFile(seg.Filename)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("convolved spectrum %s of %s: %w", seg.Filename, model, err)
		}
		out[j] = gas.Spectrum{X: x, Y: y}
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: %s", gas.ErrNoConvolution, model)
	}
	return out, nil
}
