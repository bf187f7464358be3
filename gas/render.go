package gas

import "context"

// Artifact is a rendered figure.
type Artifact struct {
	Name        string
	Key         string // storage key
	Size        int64
	ContentType string
}

// TileFigure is one page of tiles with its layout parameters.
type TileFigure struct {
	Name     string
	Page     Page
	KeyTags  []string
	DataTags int // leading key tags that describe observed series
	XAxis    string
	YAxis    string
	Title    string
	FontSize float64
}

// ColumnFigure is a single-panel plot of parallel x/y series.
type ColumnFigure struct {
	Name       string
	Title      string
	XAxis      string
	YAxis      string
	Series     []Series
	KeyTags    []string
	LineLabels []LineLabel
	Histogram  []int
	XLog       bool
	YLog       bool
	XMin       *float64
	XMax       *float64
	YBounds    Bounds
}

// Renderer produces figure artifacts.
type Renderer interface {
	RenderTiles(ctx context.Context, fig TileFigure) (Artifact, error)
	RenderColumns(ctx context.Context, fig ColumnFigure) (Artifact, error)
}
