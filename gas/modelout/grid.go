package modelout

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/linetiles/linetiles/gas"
)

// StarFile is the star description stored next to each model's output.
const StarFile = "star.yaml"

// Grid is a YAML star grid file.
type Grid struct {
	Stars []gas.Star `yaml:"stars"`
}

// LoadGrid reads a star grid. Unknown keys are rejected.
func LoadGrid(path string) ([]gas.Star, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading star grid: %w", err)
	}
	var g Grid
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("parsing star grid: %w", err)
	}
	for i := range g.Stars {
		if err := validateStar(&g.Stars[i]); err != nil {
			return nil, fmt.Errorf("star %d: %w", i, err)
		}
	}
	return g.Stars, nil
}

// LoadStars reads Dir/<id>/star.yaml for every id, in order. It satisfies gas.StarLoader.
func (r *Reader) LoadStars(ids []string) ([]gas.Star, error) {
	stars := make([]gas.Star, 0, len(ids))
	for _, id := range ids {
		path := r.Path(id, StarFile)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", gas.ErrMissingModelOutput, path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading star %s: %w", id, err)
		}
		var s gas.Star
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
		if s.CoolingModel == nil {
			s.CoolingModel = gas.StringPtr(id)
		}
		if err := validateStar(&s); err != nil {
			return nil, fmt.Errorf("star %s: %w", id, err)
		}
		stars = append(stars, s)
	}
	return stars, nil
}

func validateStar(s *gas.Star) error {
	for _, t := range s.Lines {
		if t.Molecule == "" {
			return fmt.Errorf("%w: transition without molecule", gas.ErrConfiguration)
		}
		if t.Frequency < 0 || t.Wavelength < 0 {
			return fmt.Errorf("%w: negative coordinate for %s", gas.ErrConfiguration, t.Key())
		}
	}
	return nil
}
