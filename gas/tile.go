package gas

import "fmt"

// Label is a text annotation at a normalized (0..1) position inside a tile.
type Label struct {
	Text string
	X    float64
	Y    float64
}

// TileRecord is the data of one panel: the series to draw, annotations and axis ranges.
type TileRecord struct {
	Key        TransitionKey
	Title      string
	Series     []Series
	Labels     []Label
	LineLabels []LineLabel
	XMin       float64
	XMax       float64
	HasXRange  bool
	YBounds    Bounds
	Histogram  []int // indices into Series drawn as histograms
}

// Grid is the tile layout of a page: X columns by Y rows.
type Grid struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// DefaultGrid is the layout used when no dimensions are configured.
var DefaultGrid = Grid{X: 4, Y: 3}

// Page is one multi-panel figure worth of tiles.
type Page struct {
	Index int // 1-based
	Grid  Grid
	Tiles []TileRecord
}

// BatchConfig groups tile batching parameters.
type BatchConfig struct {
	Grid          Grid
	ReserveLegend bool // one cell of each page holds the legend
}

// Cells returns the number of tiles a page can hold.
func (c BatchConfig) Cells() int {
	n := c.Grid.X * c.Grid.Y
	if c.ReserveLegend {
		n--
	}
	return n
}

// Validate checks that the grid leaves room for at least one tile.
func (c BatchConfig) Validate() error {
	if c.Grid.X <= 0 || c.Grid.Y <= 0 {
		return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrConfiguration, c.Grid.X, c.Grid.Y)
	}
	if c.Cells() <= 0 {
		return fmt.Errorf("%w: grid %dx%d has no cell left after the legend", ErrConfiguration, c.Grid.X, c.Grid.Y)
	}
	return nil
}
