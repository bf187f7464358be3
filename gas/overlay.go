package gas

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Switch is a boolean that also accepts the 0/1 integers of legacy configuration files.
type Switch bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Switch) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a boolean or 0/1", value.Line)
	}
	if n, err := strconv.Atoi(value.Value); err == nil {
		*s = n != 0
		return nil
	}
	var b bool
	if err := value.Decode(&b); err != nil {
		return fmt.Errorf("line %d: expected a boolean or 0/1, got %q", value.Line, value.Value)
	}
	*s = Switch(b)
	return nil
}

// Overlay holds optional overrides for a line-profile run, loadable from a YAML file.
// Nil pointer fields are unset and leave the defaults alone.
type Overlay struct {
	Dimensions     []int    `yaml:"dimensions"`
	NoData         *Switch  `yaml:"no_data"`
	VGFactor       *float64 `yaml:"vg_factor"`
	TelescopeLabel *Switch  `yaml:"telescope_label"`
	SortFreq       *Switch  `yaml:"sort_freq"`
	SortMolec      *Switch  `yaml:"sort_molec"`
	NoModels       *Switch  `yaml:"no_models"`
	KeyTags        []string `yaml:"keytags"`
	DoSort         *Switch  `yaml:"do_sort"`
}

// LoadOverlay reads and parses a YAML overlay file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overlay: %w", err)
	}
	var ov Overlay
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ov); err != nil {
		return nil, fmt.Errorf("%w: parsing overlay: %v", ErrConfiguration, err)
	}
	if err := ov.Validate(); err != nil {
		return nil, err
	}
	return &ov, nil
}

// Validate checks parameter ranges.
func (o *Overlay) Validate() error {
	if o.Dimensions != nil {
		if len(o.Dimensions) != 2 {
			return fmt.Errorf("%w: dimensions needs two values, got %d", ErrConfiguration, len(o.Dimensions))
		}
		if o.Dimensions[0] <= 0 || o.Dimensions[1] <= 0 {
			return fmt.Errorf("%w: dimensions must be positive, got %v", ErrConfiguration, o.Dimensions)
		}
	}
	if o.VGFactor != nil && *o.VGFactor <= 0 {
		return fmt.Errorf("%w: vg_factor must be positive, got %f", ErrConfiguration, *o.VGFactor)
	}
	return nil
}

// LineProfileOptions configures a line-profile run.
type LineProfileOptions struct {
	Grid           Grid
	NoData         bool
	VGFactor       float64
	TelescopeLabel bool
	SortFreq       bool
	SortMolec      bool
	NoModels       bool
	KeyTags        []string // nil derives keys from the model ids
	DoSort         bool
	Padding        float64
}

// DefaultLineProfileOptions returns the defaults: a 4x3 grid, three terminal velocities on
// either side, telescope labels on, sorted by wavelength.
func DefaultLineProfileOptions() LineProfileOptions {
	return LineProfileOptions{
		Grid:           DefaultGrid,
		VGFactor:       3,
		TelescopeLabel: true,
		DoSort:         true,
		Padding:        DefaultYPadding,
	}
}

// Apply overrides the options with every field set in the overlay.
func (o *LineProfileOptions) Apply(ov *Overlay) {
	if ov == nil {
		return
	}
	if ov.Dimensions != nil {
		o.Grid = Grid{X: ov.Dimensions[0], Y: ov.Dimensions[1]}
	}
	setSwitch(&o.NoData, ov.NoData)
	if ov.VGFactor != nil {
		o.VGFactor = *ov.VGFactor
	}
	setSwitch(&o.TelescopeLabel, ov.TelescopeLabel)
	setSwitch(&o.SortFreq, ov.SortFreq)
	setSwitch(&o.SortMolec, ov.SortMolec)
	setSwitch(&o.NoModels, ov.NoModels)
	if ov.KeyTags != nil {
		o.KeyTags = ov.KeyTags
	}
	setSwitch(&o.DoSort, ov.DoSort)
}

// SortPolicy returns the ordering selected by the sort switches.
func (o LineProfileOptions) SortPolicy() SortPolicy { return PolicyFor(o.SortFreq, o.SortMolec) }

func setSwitch(dst *bool, v *Switch) {
	if v != nil {
		*dst = bool(*v)
	}
}
