// Package render draws tile pages and column plots as PNG images with go-chart and stores
// them in an artifact store.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/linetiles/linetiles/gas"
	"github.com/linetiles/linetiles/gas/artifact"
)

const contentTypePNG = "image/png"

// Renderer implements gas.Renderer. Every artifact of a Renderer is stored under its run id.
type Renderer struct {
	store   artifact.Store
	runID   string
	tileW   int
	tileH   int
	columnW int
	columnH int
}

var _ gas.Renderer = (*Renderer)(nil)

// Option configures a Renderer.
type Option func(*Renderer)

// WithRunID overrides the generated run id used as key prefix.
func WithRunID(id string) Option { return func(r *Renderer) { r.runID = id } }

// WithTileSize sets the pixel size of one tile.
func WithTileSize(w, h int) Option {
	return func(r *Renderer) { r.tileW, r.tileH = w, h }
}

// WithColumnSize sets the pixel size of a column plot.
func WithColumnSize(w, h int) Option {
	return func(r *Renderer) { r.columnW, r.columnH = w, h }
}

// New returns a Renderer writing to store.
func New(store artifact.Store, opts ...Option) *Renderer {
	r := &Renderer{
		store:   store,
		runID:   uuid.NewString(),
		tileW:   400,
		tileH:   300,
		columnW: 1000,
		columnH: 600,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the key prefix of this renderer's artifacts.
func (r *Renderer) RunID() string { return r.runID }

// Key returns the storage key of the figure called name.
func (r *Renderer) Key(name string) string { return path.Join(r.runID, name+".png") }

// RenderTiles implements gas.Renderer.
func (r *Renderer) RenderTiles(ctx context.Context, fig gas.TileFigure) (gas.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return gas.Artifact{}, err
	}
	g := fig.Page.Grid
	if g.X <= 0 || g.Y <= 0 {
		return gas.Artifact{}, fmt.Errorf("%w: grid %dx%d", gas.ErrConfiguration, g.X, g.Y)
	}
	page := newCanvas(g.X*r.tileW, g.Y*r.tileH)
	cells := g.X * g.Y
	for i, tile := range fig.Page.Tiles {
		if i >= cells {
			logrus.Warnf("%s: %d tiles do not fit a %dx%d grid; dropping the rest", fig.Name, len(fig.Page.Tiles), g.X, g.Y)
			break
		}
		img := r.tile(fig, tile)
		drawAt(page, img, r.cell(g, i))
	}
	if len(fig.KeyTags) > 0 && len(fig.Page.Tiles) < cells {
		legend := newCanvas(r.tileW, r.tileH)
		drawLegend(legend, fig.KeyTags, fig.DataTags)
		drawAt(page, legend, r.cell(g, cells-1))
	}
	if fig.Title != "" {
		drawText(page, fig.Title, 0.01, 0.995)
	}
	return r.put(ctx, fig.Name, page)
}

// RenderColumns implements gas.Renderer.
func (r *Renderer) RenderColumns(ctx context.Context, fig gas.ColumnFigure) (gas.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return gas.Artifact{}, err
	}
	ch := columnChart(fig, r.columnW, r.columnH)
	img, err := renderChart(ch)
	if err != nil {
		logrus.Warnf("%s: %v; storing a blank figure", fig.Name, err)
		canvas := newCanvas(r.columnW, r.columnH)
		if fig.Title != "" {
			drawText(canvas, fig.Title, 0.02, 0.95)
		}
		img = canvas
	}
	return r.put(ctx, fig.Name, img)
}

func (r *Renderer) tile(fig gas.TileFigure, tile gas.TileRecord) image.Image {
	ch := tileChart(fig, tile, r.tileW, r.tileH)
	img, err := renderChart(ch)
	if err != nil {
		logrus.Debugf("%s: tile %s: %v; drawing a blank tile", fig.Name, tile.Key, err)
		img = newCanvas(r.tileW, r.tileH)
	}
	rgba := toRGBA(img)
	for _, l := range tile.Labels {
		drawText(rgba, l.Text, l.X, l.Y)
	}
	return rgba
}

func (r *Renderer) cell(g gas.Grid, i int) image.Point {
	return image.Pt((i%g.X)*r.tileW, (i/g.X)*r.tileH)
}

func (r *Renderer) put(ctx context.Context, name string, img image.Image) (gas.Artifact, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return gas.Artifact{}, fmt.Errorf("encoding %s: %w", name, err)
	}
	key := r.Key(name)
	info, err := r.store.Put(ctx, key, &buf, contentTypePNG)
	if err != nil {
		return gas.Artifact{}, fmt.Errorf("storing %s: %w", name, err)
	}
	return gas.Artifact{Name: name, Key: info.Key, Size: info.Size, ContentType: contentTypePNG}, nil
}
