package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

func drawAt(dst *image.RGBA, src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, src, b.Min, draw.Src)
}

// drawText writes text with its baseline at the normalized position (fx, fy), measured from
// the bottom-left corner.
func drawText(img *image.RGBA, text string, fx, fy float64) {
	b := img.Bounds()
	x := b.Min.X + int(fx*float64(b.Dx()))
	y := b.Max.Y - int(fy*float64(b.Dy()))
	if asc := basicfont.Face7x13.Metrics().Ascent.Ceil(); y < b.Min.Y+asc {
		y = b.Min.Y + asc
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// drawLegend lists key tags with a colour swatch; the first dataTags entries are drawn in
// the data colour.
func drawLegend(img *image.RGBA, keytags []string, dataTags int) {
	b := img.Bounds()
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil() + 4
	x := b.Min.X + 12
	y := b.Min.Y + 20
	for i, tag := range keytags {
		if y > b.Max.Y-4 {
			break
		}
		col := dataColor
		if i >= dataTags {
			col = modelColor(i - dataTags)
		}
		swatch := image.Rect(x, y-8, x+18, y-5)
		draw.Draw(img, swatch, image.NewUniform(color.RGBA{R: col.R, G: col.G, B: col.B, A: col.A}), image.Point{}, draw.Src)
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(x + 24), Y: fixed.I(y)},
		}
		d.DrawString(tag)
		y += lineH
	}
}
