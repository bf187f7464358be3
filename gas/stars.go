package gas

import (
	"fmt"
	"sort"
	"strings"
)

// StarLoader builds stars from model ids.
type StarLoader func(ids []string) ([]Star, error)

// ResolveStars returns the stars to work on. Exactly one of stars and ids must be given;
// stars built from ids are loaded with load.
func ResolveStars(stars []Star, ids []string, load StarLoader) ([]Star, error) {
	switch {
	case len(stars) > 0 && len(ids) > 0:
		return nil, fmt.Errorf("%w: input is doubly defined (both a star grid and model ids)", ErrConfiguration)
	case len(stars) == 0 && len(ids) == 0:
		return nil, fmt.Errorf("%w: input is undefined (neither a star grid nor model ids)", ErrConfiguration)
	case len(stars) > 0:
		return stars, nil
	}
	if load == nil {
		return nil, fmt.Errorf("%w: no loader for model ids", ErrConfiguration)
	}
	loaded, err := load(ids)
	if err != nil {
		return nil, fmt.Errorf("loading models %s: %w", strings.Join(ids, ","), err)
	}
	return loaded, nil
}

// ModelKeyTags returns one legend key per star: the distinct model ids of its transitions,
// with "None" for transitions that never computed.
func ModelKeyTags(stars []Star) []string {
	tags := make([]string, len(stars))
	for i := range stars {
		seen := make(map[string]bool)
		var ids []string
		for _, t := range stars[i].Lines {
			id := t.ModelID
			if id == "" {
				id = "None"
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		tags[i] = strings.Join(ids, ", ")
	}
	return tags
}
