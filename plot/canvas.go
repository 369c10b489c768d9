// seehuhn.de/go/riemann - Riemann sums and their pictures
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package plot

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/riemann/raster"
)

// Canvas is an RGBA image which paths can be drawn onto.
// Paths are anti-aliased and composited with source-over blending.
type Canvas struct {
	Img *image.RGBA

	r    *raster.Rasteriser
	face font.Face
}

// NewCanvas allocates a w×h canvas filled with the background colour.
func NewCanvas(w, h int, background color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	return &Canvas{
		Img:  img,
		r:    raster.NewRasteriser(rect.Rect{URx: float64(w), URy: float64(h)}),
		face: basicfont.Face7x13,
	}
}

// Fill fills p, given in the coordinate system described by ctm,
// using the nonzero winding rule.
func (c *Canvas) Fill(p *path.Data, ctm matrix.Matrix, col color.NRGBA) {
	c.reset(ctm)
	c.r.FillNonZero(p, c.blender(col))
}

// Stroke draws the outline of p with the given line width.
// The width is measured in the coordinate system described by ctm.
func (c *Canvas) Stroke(p *path.Data, ctm matrix.Matrix, width float64, col color.NRGBA) {
	c.reset(ctm)
	c.r.Width = width
	c.r.Stroke(p, c.blender(col))
}

func (c *Canvas) reset(ctm matrix.Matrix) {
	b := c.Img.Bounds()
	c.r.Reset(rect.Rect{URx: float64(b.Dx()), URy: float64(b.Dy())})
	c.r.CTM = ctm
}

// blender returns an emit callback which composites col into the image,
// weighted by the coverage values.
func (c *Canvas) blender(col color.NRGBA) func(y, xMin int, coverage []float32) {
	srcA := float32(col.A) / 255
	srcR, srcG, srcB := float32(col.R), float32(col.G), float32(col.B)
	return func(y, xMin int, coverage []float32) {
		pix := c.Img.Pix[c.Img.PixOffset(xMin, y):]
		for i, cov := range coverage {
			a := cov * srcA
			if a <= 0 {
				continue
			}
			p := pix[4*i : 4*i+4 : 4*i+4]
			keep := 1 - a
			p[0] = blend(srcR, a, p[0], keep)
			p[1] = blend(srcG, a, p[1], keep)
			p[2] = blend(srcB, a, p[2], keep)
			p[3] = blend(255, a, p[3], keep)
		}
	}
}

// blend computes src*a + dst*keep for premultiplied 8-bit channels.
func blend(src, a float32, dst uint8, keep float32) uint8 {
	v := src*a + float32(dst)*keep + 0.5
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Text draws s with its baseline starting at the device point (x, y).
func (c *Canvas) Text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.Img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// TextWidth returns the advance width of s in pixels.
func (c *Canvas) TextWidth(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

// TextHeight returns the ascent and descent of the font, in pixels.
func (c *Canvas) TextHeight() (ascent, descent int) {
	m := c.face.Metrics()
	return m.Ascent.Ceil(), m.Descent.Ceil()
}
