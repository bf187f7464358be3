package gas

import (
	"fmt"
	"strings"
)

// SpeedOfLight in cm/s.
const SpeedOfLight = 2.99792458e10

// TransitionKey is the identity of a spectral line: two transitions with the same key are
// the same line, whichever model computed them.
type TransitionKey struct {
	Molecule  string
	Label     string
	Telescope string
}

func (k TransitionKey) String() string {
	return fmt.Sprintf("%s %s (%s)", k.Molecule, k.Label, k.Telescope)
}

// Transition is a single spectral line of a molecule as requested for (or computed by) a model.
// A transition is "completed" once a model id is attached after a simulation run.
type Transition struct {
	Molecule      string  `yaml:"molecule"`       // molecule identifier, e.g. 12C16O
	MoleculePlot  string  `yaml:"molecule_plot"`  // display name; Molecule when empty
	MoleculeIndex int     `yaml:"molecule_index"` // position of the molecule in the model's molecule list
	Label         string  `yaml:"label"`          // quantum-number label
	Frequency     float64 `yaml:"frequency"`      // Hz
	Wavelength    float64 `yaml:"wavelength"`     // micron
	Telescope     string  `yaml:"telescope"`
	ModelID       string  `yaml:"model_id"`  // empty until computed
	DataFile      string  `yaml:"data_file"` // observed line profile, optional
}

// Key returns the identity of the transition.
func (t Transition) Key() TransitionKey {
	return TransitionKey{Molecule: t.Molecule, Label: t.Label, Telescope: t.Telescope}
}

// Completed reports whether a model id is attached.
func (t Transition) Completed() bool { return t.ModelID != "" }

// Position returns the spectral position in micron, derived from the frequency when known.
func (t Transition) Position() float64 {
	if t.Frequency > 0 {
		return SpeedOfLight / t.Frequency * 1e4
	}
	return t.Wavelength
}

// FileTag renders the identity of the transition for use in model output file names.
func (t Transition) FileTag() string {
	clean := strings.NewReplacer(" ", "", "/", "-", "=", "", ",", "_", "(", "", ")", "").Replace
	return fmt.Sprintf("%s_%s_%s", clean(t.Molecule), clean(t.Label), clean(t.Telescope))
}

// DisplayMolecule returns the plot name of the molecule.
func (t Transition) DisplayMolecule() string {
	if t.MoleculePlot != "" {
		return t.MoleculePlot
	}
	return t.Molecule
}

// LineListSettings configures database line labels for a star.
// Nil pointer fields mean "not set".
type LineListSettings struct {
	CDMS          bool     `yaml:"cdms"`
	JPL           bool     `yaml:"jpl"`
	LAMDA         bool     `yaml:"lamda"`
	MinStrength   *float64 `yaml:"min_strength"`
	MaxExcitation *float64 `yaml:"max_excitation"`
	Path          string   `yaml:"path"`
	Unit          string   `yaml:"unit"`
	Molecules     []string `yaml:"molecules"`
}

// Star is one parameter set (model) in a grid.
//
// Optional identifiers are tri-state: a nil pointer is unset, a pointer to "" is set but empty
// (the model was requested and did not compute), anything else is present.
type Star struct {
	Name             string            `yaml:"name"`
	CoolingModel     *string           `yaml:"cooling_model"`
	PacsModel        *string           `yaml:"pacs_model"`
	DataMol          *bool             `yaml:"data_mol"`
	VLSR             float64           `yaml:"v_lsr"`            // km/s
	TerminalVelocity float64           `yaml:"vel_infinity_gas"` // km/s
	AverageDrift     float64           `yaml:"average_drift"`    // km/s
	RStar            float64           `yaml:"r_star"`           // solar radii
	MdotGas          float64           `yaml:"mdot_gas"`         // solar masses per year
	Lines            []Transition      `yaml:"gas_lines"`
	LineList         *LineListSettings `yaml:"line_list"`
}

// CoolingModelID returns the cooling model id and whether it is present (set and non-empty).
func (s *Star) CoolingModelID() (string, bool) { return present(s.CoolingModel) }

// PacsModelID returns the PACS model id and whether it is present.
func (s *Star) PacsModelID() (string, bool) { return present(s.PacsModel) }

// ModelIdentity is the key used for cached convolution results: the PACS model id if present,
// otherwise the cooling model id. Empty when neither is present.
func (s *Star) ModelIdentity() string {
	if id, ok := s.PacsModelID(); ok {
		return id
	}
	id, _ := s.CoolingModelID()
	return id
}

// HasData reports whether observational data should be considered for the star.
// Unset means yes.
func (s *Star) HasData() bool {
	return s.DataMol == nil || *s.DataMol
}

// Transition looks up the star's own copy of a transition by identity.
func (s *Star) Transition(key TransitionKey) (Transition, bool) {
	for _, t := range s.Lines {
		if t.Key() == key {
			return t, true
		}
	}
	return Transition{}, false
}

// ModelIDs returns the distinct model ids attached to the star's transitions, in first-seen order.
func (s *Star) ModelIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range s.Lines {
		if t.ModelID == "" || seen[t.ModelID] {
			continue
		}
		seen[t.ModelID] = true
		ids = append(ids, t.ModelID)
	}
	return ids
}

func present(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// StringPtr returns a pointer to s, for populating optional Star fields.
func StringPtr(s string) *string { return &s }
