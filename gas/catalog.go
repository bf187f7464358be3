package gas

import (
	"fmt"
	"sort"
	"strings"
)

// Filter selects transitions for a catalog.
type Filter func(Transition) bool

// All accepts every transition.
func All(Transition) bool { return true }

// CompletedOnly accepts transitions with an attached model id.
func CompletedOnly(t Transition) bool { return t.Completed() }

// ExcludeTelescope rejects transitions whose telescope tag contains substr.
func ExcludeTelescope(substr string) Filter {
	return func(t Transition) bool { return !strings.Contains(t.Telescope, substr) }
}

// IncludeTelescope accepts transitions whose telescope tag contains substr.
func IncludeTelescope(substr string) Filter {
	return func(t Transition) bool { return strings.Contains(t.Telescope, substr) }
}

// Catalog is the deduplicated set of transitions of a grid of stars, in first-seen order.
type Catalog struct {
	transitions []Transition
	missing     int
}

// BuildCatalog collects the transitions of every star that pass filter, keeping one
// transition per TransitionKey. A star without any completed transition contributes nothing
// and is counted in Missing.
func BuildCatalog(stars []Star, filter Filter) *Catalog {
	if filter == nil {
		filter = All
	}
	c := &Catalog{}
	seen := make(map[TransitionKey]bool)
	for i := range stars {
		if !hasCompleted(stars[i].Lines) {
			c.missing++
			continue
		}
		for _, t := range stars[i].Lines {
			if !filter(t) || seen[t.Key()] {
				continue
			}
			seen[t.Key()] = true
			c.transitions = append(c.transitions, t)
		}
	}
	return c
}

func hasCompleted(ts []Transition) bool {
	for _, t := range ts {
		if t.Completed() {
			return true
		}
	}
	return false
}

// Transitions returns a copy of the catalog contents.
func (c *Catalog) Transitions() []Transition {
	out := make([]Transition, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// Len returns the number of distinct transitions.
func (c *Catalog) Len() int { return len(c.transitions) }

// Missing returns the number of stars that had no computed lines.
func (c *Catalog) Missing() int { return c.missing }

// SortPolicy names an ordering of transitions.
//
// Tie-break order: molecule (grouped policies only), then the spectral coordinate ascending,
// then the original position in the input.
type SortPolicy string

const (
	SortByWavelength         SortPolicy = "wavelength"
	SortByFrequency          SortPolicy = "frequency"
	SortByMoleculeWavelength SortPolicy = "molecule-wavelength"
	SortByMoleculeFrequency  SortPolicy = "molecule-frequency"
)

// ValidSortPolicies is the set of recognized sort policy names.
var ValidSortPolicies = map[SortPolicy]bool{
	SortByWavelength:         true,
	SortByFrequency:          true,
	SortByMoleculeWavelength: true,
	SortByMoleculeFrequency:  true,
}

// PolicyFor maps the sort_freq/sort_molec switches onto a SortPolicy.
func PolicyFor(sortFreq, sortMolec bool) SortPolicy {
	switch {
	case sortFreq && sortMolec:
		return SortByMoleculeFrequency
	case sortFreq:
		return SortByFrequency
	case sortMolec:
		return SortByMoleculeWavelength
	default:
		return SortByWavelength
	}
}

func (p SortPolicy) grouped() bool {
	return p == SortByMoleculeWavelength || p == SortByMoleculeFrequency
}

func (p SortPolicy) coordinate(t Transition) float64 {
	if p == SortByFrequency || p == SortByMoleculeFrequency {
		return t.Frequency
	}
	return t.Wavelength
}

// SortTransitions returns a stably sorted copy of ts.
func SortTransitions(ts []Transition, policy SortPolicy) ([]Transition, error) {
	if !ValidSortPolicies[policy] {
		return nil, fmt.Errorf("%w: unknown sort policy %q", ErrConfiguration, policy)
	}
	out := make([]Transition, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool {
		if policy.grouped() && out[i].Molecule != out[j].Molecule {
			return out[i].Molecule < out[j].Molecule
		}
		return policy.coordinate(out[i]) < policy.coordinate(out[j])
	})
	return out, nil
}
