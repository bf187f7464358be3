package gas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStars(t *testing.T) {
	grid := []Star{star("a", "m1")}
	loader := func(ids []string) ([]Star, error) {
		out := make([]Star, len(ids))
		for i, id := range ids {
			out[i] = star(id, id)
		}
		return out, nil
	}

	t.Run("doubly defined", func(t *testing.T) {
		_, err := ResolveStars(grid, []string{"m2"}, loader)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "doubly")
	})
	t.Run("undefined", func(t *testing.T) {
		_, err := ResolveStars(nil, nil, loader)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "undefined")
	})
	t.Run("grid", func(t *testing.T) {
		got, err := ResolveStars(grid, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, grid, got)
	})
	t.Run("ids", func(t *testing.T) {
		got, err := ResolveStars(nil, []string{"m2", "m3"}, loader)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m3", got[1].ModelIdentity())
	})
	t.Run("loader error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ResolveStars(nil, []string{"m2"}, func([]string) ([]Star, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestModelKeyTags(t *testing.T) {
	stars := []Star{
		star("a", "m1", line("CO", "J=2-1", "APEX", "m1b", 1300), line("CO", "J=3-2", "JCMT", "m1a", 867)),
		star("b", "m2", line("CO", "J=2-1", "APEX", "", 1300)),
	}
	assert.Equal(t, []string{"m1a, m1b", "None"}, ModelKeyTags(stars))
}

func TestStar_ModelIdentityPrefersPacs(t *testing.T) {
	s := star("a", "cool")
	assert.Equal(t, "cool", s.ModelIdentity())
	s.PacsModel = StringPtr("pacs")
	assert.Equal(t, "pacs", s.ModelIdentity())
	s.PacsModel = StringPtr("")
	assert.Equal(t, "cool", s.ModelIdentity())
}

func TestStar_HasData(t *testing.T) {
	s := Star{}
	assert.True(t, s.HasData())
	off := false
	s.DataMol = &off
	assert.False(t, s.HasData())
}
