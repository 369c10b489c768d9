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
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"
)

// dashes distinguishes the bar outlines of different sums in the
// combined view, since PDF output uses no transparency.
var dashes = [][]float64{nil, {6, 3}, {2, 2}}

// WritePDF writes the geometry of the figure (grid, bars, curve, markers
// and frame) to a single page PDF file.  One PDF unit corresponds to one
// pixel of the PNG output.  Text is not included.
func (f *Figure) WritePDF(fileName string) error {
	if f.Width <= marginLeft+marginRight || f.Height <= marginTop+marginBottom {
		return fmt.Errorf("figure size %dx%d is too small", f.Width, f.Height)
	}

	paper := &pdf.Rectangle{URx: float64(f.Width), URy: float64(f.Height)}
	page, err := document.CreateSinglePage(fileName, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// PDF has the origin in the bottom left corner, the figure is laid
	// out with the origin in the top left corner.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(f.Height)})

	m := f.Transform()
	area := f.plotArea()
	d := f.DataBounds()

	// drawPath appends p to the current path.  Quadratic segments are
	// converted to cubic ones, since PDF has no quadratic curves.
	drawPath := func(p *path.Data) {
		for cmd, pts := range p.Iter().ToCubic() {
			switch cmd {
			case path.CmdMoveTo:
				page.MoveTo(pts[0].X, pts[0].Y)
			case path.CmdLineTo:
				page.LineTo(pts[0].X, pts[0].Y)
			case path.CmdCubeTo:
				page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
			case path.CmdClose:
				page.ClosePath()
			}
		}
	}

	page.SetLineCap(graphics.LineCapButt)
	page.SetLineJoin(graphics.LineJoinBevel)

	if f.Grid {
		page.SetStrokeColor(pdfcolor.DeviceGray(0.85))
		page.SetLineWidth(1)
		for _, x := range ticks(d.LLx, d.URx, 10) {
			px := apply(m, vec.Vec2{X: x}).X
			page.MoveTo(px, area.LLy)
			page.LineTo(px, area.URy)
		}
		for _, y := range ticks(d.LLy, d.URy, 8) {
			py := apply(m, vec.Vec2{Y: y}).Y
			page.MoveTo(area.LLx, py)
			page.LineTo(area.URx, py)
		}
		page.Stroke()
	}

	numBars := 0
	for _, l := range f.layers {
		if l.kind == barLayer {
			numBars++
		}
	}
	barIdx := 0
	for _, l := range f.layers {
		if l.kind != barLayer {
			continue
		}
		if numBars == 1 {
			page.SetFillColor(pdfcolor.DeviceGray(l.style.Gray))
			for _, r := range l.rects {
				p0 := apply(m, vec.Vec2{X: r.XLeft, Y: 0})
				p1 := apply(m, vec.Vec2{X: r.XRight(), Y: r.Height})
				page.Rectangle(p0.X, min(p0.Y, p1.Y), p1.X-p0.X, math.Abs(p1.Y-p0.Y))
			}
			page.Fill()
		}

		page.SetStrokeColor(pdfcolor.DeviceGray(l.style.Gray * 0.6))
		page.SetLineWidth(l.style.LineWidth)
		dash := dashes[barIdx%len(dashes)]
		if dash != nil {
			page.SetLineDash(dash, 0)
		}
		for _, r := range l.rects {
			p0 := apply(m, vec.Vec2{X: r.XLeft, Y: 0})
			p1 := apply(m, vec.Vec2{X: r.XRight(), Y: r.Height})
			page.Rectangle(p0.X, min(p0.Y, p1.Y), p1.X-p0.X, math.Abs(p1.Y-p0.Y))
		}
		page.Stroke()
		if dash != nil {
			page.SetLineDash(nil, 0)
		}
		barIdx++
	}

	if d.LLy < 0 && d.URy > 0 {
		y0 := apply(m, vec.Vec2{}).Y
		page.SetStrokeColor(pdfcolor.DeviceGray(0.2))
		page.SetLineWidth(1)
		page.MoveTo(area.LLx, y0)
		page.LineTo(area.URx, y0)
		page.Stroke()
	}

	for _, l := range f.layers {
		switch l.kind {
		case curveLayer:
			if len(l.pts) < 2 {
				continue
			}
			page.SetStrokeColor(pdfcolor.DeviceGray(l.style.Gray))
			page.SetLineWidth(l.style.LineWidth)
			for i, p := range l.pts {
				q := apply(m, p)
				if i == 0 {
					page.MoveTo(q.X, q.Y)
				} else {
					page.LineTo(q.X, q.Y)
				}
			}
			page.Stroke()
		case markerLayer:
			radius := max(l.style.LineWidth, 1) * 2
			dots := &path.Data{}
			for _, p := range l.pts {
				dots = addCircle(dots, apply(m, p), radius)
			}
			page.SetFillColor(pdfcolor.DeviceGray(l.style.Gray * 0.6))
			drawPath(dots)
			page.Fill()
		}
	}

	page.SetStrokeColor(pdfcolor.DeviceGray(0.2))
	page.SetLineWidth(1)
	page.Rectangle(area.LLx, area.LLy, area.URx-area.LLx, area.URy-area.LLy)
	page.Stroke()

	tracer().Debugf("plot: PDF %q %q", fileName, f.Title)
	return page.Close()
}
