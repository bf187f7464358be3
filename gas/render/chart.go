package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/linetiles/linetiles/gas"
)

var (
	dataColor = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	palette   = []drawing.Color{
		{R: 31, G: 119, B: 180, A: 255},
		{R: 214, G: 39, B: 40, A: 255},
		{R: 44, G: 160, B: 44, A: 255},
		{R: 255, G: 127, B: 14, A: 255},
		{R: 148, G: 103, B: 189, A: 255},
		{R: 140, G: 86, B: 75, A: 255},
		{R: 227, G: 119, B: 194, A: 255},
		{R: 127, G: 127, B: 127, A: 255},
		{R: 188, G: 189, B: 34, A: 255},
		{R: 23, G: 190, B: 207, A: 255},
	}
)

func modelColor(i int) drawing.Color { return palette[i%len(palette)] }

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 1.5}
}

// seriesSpec drives the conversion of gas series into chart series.
type seriesSpec struct {
	names     []string
	histogram []int
	xlog      bool
	ylog      bool
	window    *[2]float64 // crop before transforming
}

// chartSeries converts the non-empty series. Histogram series are drawn black as steps; the
// others take the palette colour of their slot among non-histogram series.
func chartSeries(in []gas.Series, spec seriesSpec) []chart.Series {
	hist := make(map[int]bool, len(spec.histogram))
	for _, i := range spec.histogram {
		hist[i] = true
	}
	var out []chart.Series
	slot := 0
	for i, s := range in {
		isHist := hist[i]
		col := dataColor
		if !isHist {
			col = modelColor(slot)
			slot++
		}
		if spec.window != nil {
			s = gas.CropToWindow(s.X, s.Y, spec.window[0], spec.window[1])
		}
		x, y := transform(s.X, s.Y, spec.xlog, spec.ylog)
		if len(x) == 0 {
			continue
		}
		if isHist {
			x, y = steps(x, y)
		}
		name := ""
		if i < len(spec.names) {
			name = spec.names[i]
		}
		out = append(out, chart.ContinuousSeries{Name: name, XValues: x, YValues: y, Style: lineStyle(col)})
	}
	return out
}

// transform applies log10 to the requested axes, dropping non-positive and NaN points.
func transform(x, y []float64, xlog, ylog bool) ([]float64, []float64) {
	n := min(len(x), len(y))
	ox := make([]float64, 0, n)
	oy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xv, yv := x[i], y[i]
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		if xlog {
			if xv <= 0 {
				continue
			}
			xv = math.Log10(xv)
		}
		if ylog {
			if yv <= 0 {
				continue
			}
			yv = math.Log10(yv)
		}
		ox, oy = append(ox, xv), append(oy, yv)
	}
	return ox, oy
}

// steps turns a sampled curve into a histogram outline.
func steps(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if n < 2 {
		return x, y
	}
	xs := make([]float64, 0, 2*n-1)
	ys := make([]float64, 0, 2*n-1)
	for i := 0; i < n-1; i++ {
		xs = append(xs, x[i], x[i+1])
		ys = append(ys, y[i], y[i])
	}
	return append(xs, x[n-1]), append(ys, y[n-1])
}

func axisRange(lo, hi float64, log bool) *chart.ContinuousRange {
	if log {
		if lo <= 0 || hi <= 0 {
			return nil
		}
		lo, hi = math.Log10(lo), math.Log10(hi)
	}
	if !(hi > lo) {
		return nil
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// asRange keeps a nil range nil as a chart.Range, so go-chart falls back to auto-scaling.
func asRange(r *chart.ContinuousRange) chart.Range {
	if r == nil {
		return nil
	}
	return r
}

func axisName(name string, log bool) string {
	if log && name != "" {
		return "log " + name
	}
	return name
}

// annotations places line labels along the top of the y range.
func annotations(labels []gas.LineLabel, top float64, xlog bool) chart.Series {
	var vs []chart.Value2
	for _, l := range labels {
		x := l.Coordinate
		if xlog {
			if x <= 0 {
				continue
			}
			x = math.Log10(x)
		}
		vs = append(vs, chart.Value2{XValue: x, YValue: top, Label: l.Text})
	}
	if len(vs) == 0 {
		return nil
	}
	return chart.AnnotationSeries{
		Style:       chart.Style{FontSize: 6, StrokeColor: modelColor(7), FillColor: drawing.Color{R: 255, G: 255, B: 255, A: 200}},
		Annotations: vs,
	}
}

func seriesTop(series []chart.Series) (float64, bool) {
	top, ok := 0.0, false
	for _, s := range series {
		cs, isCont := s.(chart.ContinuousSeries)
		if !isCont {
			continue
		}
		for _, v := range cs.YValues {
			if !ok || v > top {
				top, ok = v, true
			}
		}
	}
	return top, ok
}

func tileChart(fig gas.TileFigure, tile gas.TileRecord, w, h int) chart.Chart {
	spec := seriesSpec{histogram: tile.Histogram}
	if tile.HasXRange {
		spec.window = &[2]float64{tile.XMin, tile.XMax}
	}
	series := chartSeries(tile.Series, spec)
	ch := chart.Chart{
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 8, Right: 8, Bottom: 8}},
		XAxis:      chart.XAxis{Name: fig.XAxis},
		YAxis:      chart.YAxis{Name: fig.YAxis},
		Series:     series,
	}
	if fig.FontSize > 0 {
		ch.XAxis.NameStyle = chart.Style{FontSize: fig.FontSize}
		ch.YAxis.NameStyle = chart.Style{FontSize: fig.FontSize}
	}
	if tile.HasXRange {
		ch.XAxis.Range = asRange(axisRange(tile.XMin, tile.XMax, false))
	}
	top, ok := seriesTop(series)
	if tile.YBounds.Set {
		ch.YAxis.Range = asRange(axisRange(tile.YBounds.Min, tile.YBounds.Max, false))
		top, ok = tile.YBounds.Max, true
	}
	if ok {
		if a := annotations(tile.LineLabels, top, false); a != nil {
			ch.Series = append(ch.Series, a)
		}
	}
	return ch
}

func columnChart(fig gas.ColumnFigure, w, h int) chart.Chart {
	spec := seriesSpec{names: fig.KeyTags, histogram: fig.Histogram, xlog: fig.XLog, ylog: fig.YLog}
	series := chartSeries(fig.Series, spec)
	ch := chart.Chart{
		Title:      fig.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: axisName(fig.XAxis, fig.XLog)},
		YAxis:      chart.YAxis{Name: axisName(fig.YAxis, fig.YLog)},
		Series:     series,
	}
	if fig.XMin != nil || fig.XMax != nil {
		lo, hi := xExtent(series)
		if fig.XMin != nil {
			lo = logIf(*fig.XMin, fig.XLog)
		}
		if fig.XMax != nil {
			hi = logIf(*fig.XMax, fig.XLog)
		}
		ch.XAxis.Range = asRange(axisRange(lo, hi, false))
	}
	top, ok := seriesTop(series)
	if fig.YBounds.Set {
		ch.YAxis.Range = asRange(axisRange(fig.YBounds.Min, fig.YBounds.Max, fig.YLog))
		top, ok = logIf(fig.YBounds.Max, fig.YLog), true
	}
	if ok {
		if a := annotations(fig.LineLabels, top, fig.XLog); a != nil {
			ch.Series = append(ch.Series, a)
		}
	}
	if len(fig.KeyTags) > 0 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch
}

func logIf(v float64, log bool) float64 {
	if log && v > 0 {
		return math.Log10(v)
	}
	return v
}

func xExtent(series []chart.Series) (lo, hi float64) {
	first := true
	for _, s := range series {
		cs, ok := s.(chart.ContinuousSeries)
		if !ok {
			continue
		}
		for _, v := range cs.XValues {
			if first {
				lo, hi, first = v, v, false
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi
}

// renderChart draws ch as an image. go-chart panics on some degenerate inputs; those are
// reported as errors.
func renderChart(ch chart.Chart) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("chart: %v", r)
		}
	}()
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}
