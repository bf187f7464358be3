package gas

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// UnitMicron is the only coordinate unit supported for line labels.
const UnitMicron = "micron"

// LineLabel annotates a spectral position.
type LineLabel struct {
	Text       string
	Coordinate float64 // micron
	Source     int     // index of the originating molecule or line list
}

// LineListQuery asks a spectroscopic database for the lines of one molecule in a window.
type LineListQuery struct {
	Molecule      string
	Min           float64 // micron
	Max           float64 // micron
	MinStrength   *float64
	MaxExcitation *float64
	CDMS          bool
	JPL           bool
	LAMDA         bool
}

// LineListProvider returns candidate transitions from a spectroscopic database.
type LineListProvider interface {
	Lines(ctx context.Context, q LineListQuery) ([]Transition, error)
}

// LabelFilters restricts database line labels.
type LabelFilters struct {
	Unit             string
	Molecules        []string
	ExcludeMolecules []string // substrings; a molecule containing any of them is skipped
	MinStrength      *float64
	MaxExcitation    *float64
	CDMS             bool
	JPL              bool
	LAMDA            bool
}

// FiltersFromSettings converts star line-list settings to LabelFilters. Zero strength and
// excitation limits count as unset; molecules tagged p1H are excluded.
func FiltersFromSettings(s *LineListSettings) LabelFilters {
	if s == nil {
		return LabelFilters{Unit: UnitMicron, ExcludeMolecules: []string{"p1H"}}
	}
	f := LabelFilters{
		Unit:             s.Unit,
		Molecules:        s.Molecules,
		ExcludeMolecules: []string{"p1H"},
		CDMS:             s.CDMS,
		JPL:              s.JPL,
		LAMDA:            s.LAMDA,
	}
	if s.MinStrength != nil && *s.MinStrength != 0 {
		f.MinStrength = s.MinStrength
	}
	if s.MaxExcitation != nil && *s.MaxExcitation != 0 {
		f.MaxExcitation = s.MaxExcitation
	}
	return f
}

// Validate rejects unsupported units.
func (f LabelFilters) Validate() error {
	if !strings.EqualFold(f.Unit, UnitMicron) {
		return fmt.Errorf("%w: line list unit %q not supported, only %s", ErrConfiguration, f.Unit, UnitMicron)
	}
	return nil
}

func (f LabelFilters) excluded(molecule string) bool {
	for _, ex := range f.ExcludeMolecules {
		if ex != "" && strings.Contains(molecule, ex) {
			return true
		}
	}
	return false
}

// LabelGenerator builds line labels from a spectroscopic database.
type LabelGenerator struct {
	Provider LineListProvider
}

// FromDatabase returns the labels of every candidate line in [lo, hi] micron, sorted by
// coordinate. Ties keep molecule order.
func (g *LabelGenerator) FromDatabase(ctx context.Context, lo, hi float64, f LabelFilters) ([]LineLabel, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var labels []LineLabel
	source := 0
	for _, molecule := range f.Molecules {
		if f.excluded(molecule) {
			continue
		}
		lines, err := g.Provider.Lines(ctx, LineListQuery{
			Molecule:      molecule,
			Min:           lo,
			Max:           hi,
			MinStrength:   f.MinStrength,
			MaxExcitation: f.MaxExcitation,
			CDMS:          f.CDMS,
			JPL:           f.JPL,
			LAMDA:         f.LAMDA,
		})
		if err != nil {
			return nil, fmt.Errorf("line list for %s: %w", molecule, err)
		}
		for _, t := range lines {
			pos := t.Position()
			if pos < lo || pos > hi {
				continue
			}
			labels = append(labels, LineLabel{
				Text:       fmt.Sprintf("%s %s", molecule, t.Label),
				Coordinate: pos,
				Source:     source,
			})
		}
		source++
	}
	sortLabels(labels)
	return labels, nil
}

// LabelsFromCatalog derives labels from completed transitions: "<molecule> <label>" at the
// transition position, one label per distinct (text, position, molecule index).
func LabelsFromCatalog(ts []Transition) []LineLabel {
	return catalogLabels(ts, func(t Transition) string {
		return fmt.Sprintf("%s %s", t.Molecule, t.Label)
	})
}

// PlotLabelsFromCatalog is LabelsFromCatalog with the molecule plot name as text.
func PlotLabelsFromCatalog(ts []Transition) []LineLabel {
	return catalogLabels(ts, Transition.DisplayMolecule)
}

// StarLabels collects catalog labels over the transitions of every star.
func StarLabels(stars []Star) []LineLabel {
	var ts []Transition
	for i := range stars {
		ts = append(ts, stars[i].Lines...)
	}
	return LabelsFromCatalog(ts)
}

func catalogLabels(ts []Transition, text func(Transition) string) []LineLabel {
	seen := make(map[LineLabel]bool)
	var labels []LineLabel
	for _, t := range ts {
		if !t.Completed() {
			continue
		}
		l := LineLabel{Text: text(t), Coordinate: t.Position(), Source: t.MoleculeIndex}
		if seen[l] {
			continue
		}
		seen[l] = true
		labels = append(labels, l)
	}
	sortLabels(labels)
	return labels
}

// LabelsInWindow returns the labels with lo <= coordinate <= hi.
func LabelsInWindow(labels []LineLabel, lo, hi float64) []LineLabel {
	var out []LineLabel
	for _, l := range labels {
		if l.Coordinate >= lo && l.Coordinate <= hi {
			out = append(out, l)
		}
	}
	return out
}

func sortLabels(labels []LineLabel) {
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Coordinate < labels[j].Coordinate })
}
