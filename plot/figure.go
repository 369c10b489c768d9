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

// Package plot draws Riemann sums as bar charts over the graph of the
// integrand.
//
// A Figure collects layers (rectangles of one or more sums, a densely
// sampled curve, sample point markers) and renders them to a PNG image
// or a PDF file.  The figure never computes anything itself; all data
// comes from package seehuhn.de/go/riemann.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"

	"github.com/npillmayer/schuko/tracing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/riemann"
)

func tracer() tracing.Trace {
	return tracing.Select("riemann")
}

// Style describes how a layer is drawn.
type Style struct {
	Fill      color.NRGBA // bar or marker fill, alpha is honoured
	Line      color.NRGBA // bar edges and curves
	LineWidth float64     // in pixels
	Label     string      // legend entry; empty means no entry

	// Gray is the grey level (0=black, 1=white) used for this layer in
	// PDF output.
	Gray float64
}

type layerKind int

const (
	barLayer layerKind = iota
	curveLayer
	markerLayer
)

type layer struct {
	kind  layerKind
	rects []riemann.Rectangle
	pts   []vec.Vec2
	style Style
}

// Figure is a plot of one or more Riemann sums.
type Figure struct {
	Title    string
	Subtitle string // second title line, e.g. the value of the sum
	XLabel   string
	YLabel   string

	Width, Height int  // in pixels (PNG) or points (PDF)
	Grid          bool // draw grid lines at the tick positions

	layers []layer
}

// New returns an empty 1000×600 figure with grid lines.
func New(title string) *Figure {
	return &Figure{
		Title:  title,
		XLabel: "x",
		YLabel: "f(x)",
		Width:  1000,
		Height: 600,
		Grid:   true,
	}
}

// AddBars adds the rectangles of a Riemann sum.
// Bars with negative height extend below the x-axis.
func (f *Figure) AddBars(res *riemann.Result, s Style) {
	f.layers = append(f.layers, layer{kind: barLayer, rects: res.Rectangles, style: s})
}

// AddCurve adds a polyline through pts, typically the graph of the
// integrand.
func (f *Figure) AddCurve(pts []vec.Vec2, s Style) {
	f.layers = append(f.layers, layer{kind: curveLayer, pts: pts, style: s})
}

// AddMarkers adds a small dot at each of the given points.
func (f *Figure) AddMarkers(pts []vec.Vec2, s Style) {
	f.layers = append(f.layers, layer{kind: markerLayer, pts: pts, style: s})
}

// DataBounds returns the region of the data plane shown by the figure.
// The x-axis (y=0) is always included, and the range is extended by 5% on
// each side.
func (f *Figure) DataBounds() rect.Rect {
	b := rect.Rect{LLx: math.Inf(1), LLy: 0, URx: math.Inf(-1), URy: 0}
	for _, l := range f.layers {
		for _, r := range l.rects {
			b.LLx = min(b.LLx, r.XLeft)
			b.URx = max(b.URx, r.XRight())
			b.LLy = min(b.LLy, r.Height)
			b.URy = max(b.URy, r.Height)
		}
		for _, p := range l.pts {
			b.LLx = min(b.LLx, p.X)
			b.URx = max(b.URx, p.X)
			b.LLy = min(b.LLy, p.Y)
			b.URy = max(b.URy, p.Y)
		}
	}
	if b.LLx > b.URx {
		b.LLx, b.URx = 0, 1
	}
	if b.URx-b.LLx == 0 {
		b.LLx, b.URx = b.LLx-0.5, b.URx+0.5
	}
	if b.URy-b.LLy == 0 {
		b.URy = b.LLy + 1
	}

	dx := 0.05 * (b.URx - b.LLx)
	dy := 0.05 * (b.URy - b.LLy)
	return rect.Rect{LLx: b.LLx - dx, LLy: b.LLy - dy, URx: b.URx + dx, URy: b.URy + dy}
}

// margins around the plot area, in pixels
const (
	marginLeft   = 70
	marginRight  = 30
	marginTop    = 60
	marginBottom = 55
)

// plotArea returns the device space rectangle used for the data.
// Device space has the origin in the top left corner, y pointing down.
func (f *Figure) plotArea() rect.Rect {
	return rect.Rect{
		LLx: marginLeft,
		LLy: marginTop,
		URx: float64(f.Width - marginRight),
		URy: float64(f.Height - marginBottom),
	}
}

// Transform returns the matrix which maps data coordinates to device
// coordinates.
func (f *Figure) Transform() matrix.Matrix {
	d := f.DataBounds()
	a := f.plotArea()
	sx := (a.URx - a.LLx) / (d.URx - d.LLx)
	sy := (a.URy - a.LLy) / (d.URy - d.LLy)
	return matrix.Matrix{sx, 0, 0, -sy, a.LLx - d.LLx*sx, a.LLy + d.URy*sy}
}

// apply maps v through m.
func apply(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// Render draws the figure into a new image.
func (f *Figure) Render() (*image.RGBA, error) {
	if f.Width <= marginLeft+marginRight || f.Height <= marginTop+marginBottom {
		return nil, fmt.Errorf("figure size %dx%d is too small", f.Width, f.Height)
	}

	c := NewCanvas(f.Width, f.Height, color.White)
	m := f.Transform()
	area := f.plotArea()
	d := f.DataBounds()
	xTicks := ticks(d.LLx, d.URx, 10)
	yTicks := ticks(d.LLy, d.URy, 8)

	if f.Grid {
		grid := &path.Data{}
		for _, x := range xTicks {
			px := apply(m, vec.Vec2{X: x}).X
			grid = grid.MoveTo(vec.Vec2{X: px, Y: area.LLy}).LineTo(vec.Vec2{X: px, Y: area.URy})
		}
		for _, y := range yTicks {
			py := apply(m, vec.Vec2{Y: y}).Y
			grid = grid.MoveTo(vec.Vec2{X: area.LLx, Y: py}).LineTo(vec.Vec2{X: area.URx, Y: py})
		}
		c.Stroke(grid, matrix.Identity, 1, gridColor)
	}

	for _, l := range f.layers {
		if l.kind == barLayer {
			f.drawBars(c, m, l)
		}
	}

	// x-axis
	if d.LLy < 0 && d.URy > 0 {
		y0 := apply(m, vec.Vec2{}).Y
		axis := (&path.Data{}).MoveTo(vec.Vec2{X: area.LLx, Y: y0}).LineTo(vec.Vec2{X: area.URx, Y: y0})
		c.Stroke(axis, matrix.Identity, 1, axisColor)
	}

	for _, l := range f.layers {
		switch l.kind {
		case curveLayer:
			f.drawCurve(c, m, l)
		case markerLayer:
			f.drawMarkers(c, m, l)
		}
	}

	frame := (&path.Data{}).
		MoveTo(vec.Vec2{X: area.LLx, Y: area.LLy}).
		LineTo(vec.Vec2{X: area.URx, Y: area.LLy}).
		LineTo(vec.Vec2{X: area.URx, Y: area.URy}).
		LineTo(vec.Vec2{X: area.LLx, Y: area.URy}).
		Close()
	c.Stroke(frame, matrix.Identity, 1, axisColor)

	f.drawLabels(c, m, xTicks, yTicks)
	f.drawLegend(c)

	return c.Img, nil
}

func (f *Figure) drawBars(c *Canvas, m matrix.Matrix, l layer) {
	bars := &path.Data{}
	for _, r := range l.rects {
		bars = addRect(bars, r.XLeft, 0, r.XRight(), r.Height)
	}
	if l.style.Fill.A > 0 {
		c.Fill(bars, m, l.style.Fill)
	}
	if l.style.Line.A > 0 && l.style.LineWidth > 0 {
		// Stroke in device space, so that the line width is in pixels.
		edges := &path.Data{}
		for _, r := range l.rects {
			p0 := apply(m, vec.Vec2{X: r.XLeft, Y: 0})
			p1 := apply(m, vec.Vec2{X: r.XRight(), Y: r.Height})
			edges = addRect(edges, p0.X, p0.Y, p1.X, p1.Y)
		}
		c.Stroke(edges, matrix.Identity, l.style.LineWidth, l.style.Line)
	}
}

func (f *Figure) drawCurve(c *Canvas, m matrix.Matrix, l layer) {
	if len(l.pts) < 2 {
		return
	}
	curve := &path.Data{}
	for i, p := range l.pts {
		if i == 0 {
			curve = curve.MoveTo(apply(m, p))
		} else {
			curve = curve.LineTo(apply(m, p))
		}
	}
	c.Stroke(curve, matrix.Identity, l.style.LineWidth, l.style.Line)
}

func (f *Figure) drawMarkers(c *Canvas, m matrix.Matrix, l layer) {
	radius := max(l.style.LineWidth, 1) * 2
	dots := &path.Data{}
	for _, p := range l.pts {
		dots = addCircle(dots, apply(m, p), radius)
	}
	c.Fill(dots, matrix.Identity, l.style.Fill)
}

func (f *Figure) drawLabels(c *Canvas, m matrix.Matrix, xTicks, yTicks []float64) {
	area := f.plotArea()
	ascent, _ := c.TextHeight()

	for _, x := range xTicks {
		s := tickLabel(x)
		px := int(math.Round(apply(m, vec.Vec2{X: x}).X))
		c.Text(px-c.TextWidth(s)/2, int(area.URy)+ascent+6, s, textColor)
	}
	for _, y := range yTicks {
		s := tickLabel(y)
		py := int(math.Round(apply(m, vec.Vec2{Y: y}).Y))
		c.Text(int(area.LLx)-c.TextWidth(s)-6, py+ascent/2, s, textColor)
	}

	if f.XLabel != "" {
		x := int(area.LLx+area.URx)/2 - c.TextWidth(f.XLabel)/2
		c.Text(x, f.Height-12, f.XLabel, textColor)
	}
	if f.YLabel != "" {
		c.Text(8, int(area.LLy)-8, f.YLabel, textColor)
	}
	if f.Title != "" {
		c.Text(f.Width/2-c.TextWidth(f.Title)/2, 22, f.Title, textColor)
	}
	if f.Subtitle != "" {
		c.Text(f.Width/2-c.TextWidth(f.Subtitle)/2, 22+ascent+6, f.Subtitle, textColor)
	}
}

func (f *Figure) drawLegend(c *Canvas) {
	var entries []layer
	for _, l := range f.layers {
		if l.style.Label != "" {
			entries = append(entries, l)
		}
	}
	if len(entries) == 0 {
		return
	}

	ascent, descent := c.TextHeight()
	lineHeight := ascent + descent + 6
	textWidth := 0
	for _, l := range entries {
		textWidth = max(textWidth, c.TextWidth(l.style.Label))
	}

	area := f.plotArea()
	const swatch = 24
	w := float64(swatch + textWidth + 24)
	h := float64(len(entries)*lineHeight + 10)
	x0 := area.URx - w - 10
	y0 := area.LLy + 10

	box := addRect(&path.Data{}, x0, y0, x0+w, y0+h)
	c.Fill(box, matrix.Identity, color.NRGBA{R: 255, G: 255, B: 255, A: 220})
	c.Stroke(box, matrix.Identity, 1, gridColor)

	for i, l := range entries {
		yMid := y0 + 5 + float64(i*lineHeight) + float64(lineHeight)/2
		sx := x0 + 8
		switch l.kind {
		case curveLayer:
			seg := (&path.Data{}).MoveTo(vec.Vec2{X: sx, Y: yMid}).LineTo(vec.Vec2{X: sx + swatch, Y: yMid})
			c.Stroke(seg, matrix.Identity, l.style.LineWidth, l.style.Line)
		case markerLayer:
			c.Fill(addCircle(&path.Data{}, vec.Vec2{X: sx + swatch/2, Y: yMid}, 4), matrix.Identity, l.style.Fill)
		default:
			sw := addRect(&path.Data{}, sx, yMid-6, sx+swatch, yMid+6)
			c.Fill(sw, matrix.Identity, l.style.Fill)
			if l.style.Line.A > 0 {
				c.Stroke(sw, matrix.Identity, 1, l.style.Line)
			}
		}
		c.Text(int(sx)+swatch+8, int(yMid)+ascent/2-1, l.style.Label, textColor)
	}
}

// WritePNG renders the figure and writes it in PNG format.
func (f *Figure) WritePNG(w io.Writer) error {
	img, err := f.Render()
	if err != nil {
		return err
	}
	tracer().Debugf("plot: PNG %dx%d %q", f.Width, f.Height, f.Title)
	return png.Encode(w, img)
}

// addRect appends the closed rectangle with corners (x0, y0) and (x1, y1).
func addRect(p *path.Data, x0, y0, x1, y1 float64) *path.Data {
	return p.
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// kappa is the control point distance for approximating a quarter circle
// by a cubic Bézier curve: 4/3*(sqrt(2)-1).
const kappa = 0.5522847498307936

// addCircle appends an approximate circle made of four cubic Bézier curves.
func addCircle(p *path.Data, c vec.Vec2, r float64) *path.Data {
	k := r * kappa
	pt := func(x, y float64) vec.Vec2 { return vec.Vec2{X: c.X + x, Y: c.Y + y} }
	return p.
		MoveTo(pt(r, 0)).
		CubeTo(pt(r, -k), pt(k, -r), pt(0, -r)).
		CubeTo(pt(-k, -r), pt(-r, -k), pt(-r, 0)).
		CubeTo(pt(-r, k), pt(-k, r), pt(0, r)).
		CubeTo(pt(k, r), pt(r, k), pt(r, 0)).
		Close()
}

// ticks returns the multiples of a "nice" step size (1, 2 or 5 times a
// power of ten) inside [lo, hi], using at most about maxTicks values.
func ticks(lo, hi float64, maxTicks int) []float64 {
	step := niceStep((hi - lo) / float64(maxTicks))
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}
	var res []float64
	for k := math.Ceil(lo / step); k*step <= hi; k++ {
		v := k * step
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		res = append(res, v)
	}
	return res
}

// niceStep rounds x up to 1, 2 or 5 times a power of ten.
func niceStep(x float64) float64 {
	if x <= 0 {
		return 0
	}
	p := math.Pow(10, math.Floor(math.Log10(x)))
	switch m := x / p; {
	case m <= 1:
		return p
	case m <= 2:
		return 2 * p
	case m <= 5:
		return 5 * p
	default:
		return 10 * p
	}
}

func tickLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

var (
	gridColor = color.NRGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	axisColor = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	textColor = color.Black
)
