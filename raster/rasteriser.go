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

// Package raster converts vector paths into anti-aliased pixel coverage.
//
// Coverage is the exact fraction of each pixel's area which lies inside
// the filled (or stroked) path.  It is delivered one scanline at a time to
// a callback, which typically composites a colour into an image.
package raster

import (
	"cmp"
	"math"
	"slices"

	"github.com/npillmayer/schuko/tracing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func tracer() tracing.Trace {
	return tracing.Select("riemann")
}

// edge is a non-horizontal line segment in device coordinates,
// normalised so that yTop < yBot.
type edge struct {
	xTop       float64 // x at yTop
	yTop, yBot float64
	dxdy       float64 // change of x per unit of y
	dir        float32 // +1 if the original segment pointed down, -1 if up
}

func (e *edge) xAt(y float64) float64 {
	return e.xTop + e.dxdy*(y-e.yTop)
}

// Rasteriser computes pixel coverage for paths.
// One instance can be reused for many paths; internal buffers
// grow as needed and are kept between calls.
//
// A Rasteriser is not safe for concurrent use.
type Rasteriser struct {
	// CTM maps user space to device space.  Must be non-singular.
	CTM matrix.Matrix

	// Clip limits output to this device space rectangle.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the tolerance for flattening curves, in device pixels.
	Flatness float64

	// Width is the line width used by Stroke, in user space units.
	Width float64

	edges  []edge
	active []int
	cover  []float32 // signed vertical extent per pixel; reused as output
	area   []float32 // signed area to the right of the edge within the pixel
	splits []float64 // scratch space for accumulate

	// bounding box of the edges, in device space
	bboxEmpty              bool
	bxMin, bxMax, byMin, byMax float64

	// stroke scratch space
	poly []vec.Vec2
}

// NewRasteriser returns a Rasteriser with the given clip rectangle,
// the identity CTM and default values for the other parameters.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	tracer().Debugf("raster: new rasteriser, clip %v", clip)
	return &Rasteriser{
		CTM:      matrix.Identity,
		Clip:     clip,
		Flatness: defaultFlatness,
		Width:    1,
	}
}

// Reset restores the default parameters and sets a new clip rectangle.
// Buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1

	r.edges = r.edges[:0]
	r.active = r.active[:0]
	r.cover = r.cover[:0]
	r.area = r.area[:0]
	r.splits = r.splits[:0]
	r.poly = r.poly[:0]
}

// FillNonZero fills the path using the nonzero winding rule.
// Coverage is passed to emit one row at a time, starting at pixel xMin.
// The coverage slice is only valid during the call to emit.
func (r *Rasteriser) FillNonZero(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	r.beginEdges()
	r.walk(p, r.addPolygonEdges)
	r.scan(emit)
}

// beginEdges clears the edge list and the bounding box.
func (r *Rasteriser) beginEdges() {
	r.edges = r.edges[:0]
	r.bboxEmpty = true
}

// walk flattens every subpath of p and passes the resulting polygon
// (in user space) to fn.  Closed subpaths are reported with closed=true.
func (r *Rasteriser) walk(p *path.Data, fn func(poly []vec.Vec2, closed bool)) {
	r.poly = r.poly[:0]
	appendPoint := func(_, to vec.Vec2) {
		r.poly = append(r.poly, to)
	}
	flush := func(closed bool) {
		if len(r.poly) > 1 {
			fn(r.poly, closed)
		}
		r.poly = r.poly[:0]
	}

	var current vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			flush(false)
			current = p.Coords[k]
			r.poly = append(r.poly, current)
			k++
		case path.CmdLineTo:
			current = p.Coords[k]
			r.poly = append(r.poly, current)
			k++
		case path.CmdQuadTo:
			// degree elevation: the quadratic is an exact cubic
			c := p.Coords[k]
			end := p.Coords[k+1]
			c1 := current.Add(c.Sub(current).Mul(2.0 / 3.0))
			c2 := end.Add(c.Sub(end).Mul(2.0 / 3.0))
			r.flattenCubic(current, c1, c2, end, appendPoint)
			current = end
			k += 2
		case path.CmdCubeTo:
			end := p.Coords[k+2]
			r.flattenCubic(current, p.Coords[k], p.Coords[k+1], end, appendPoint)
			current = end
			k += 3
		case path.CmdClose:
			if len(r.poly) > 0 {
				current = r.poly[0]
			}
			flush(true)
			r.poly = append(r.poly, current)
		}
	}
	flush(false)
}

// flattenCubic approximates a cubic Bézier curve by line segments.
// The number of segments follows Wang's formula, applied to the control
// polygon in device space.
func (r *Rasteriser) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2))
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3))
	m := max(d1.Length(), d2.Length())

	n := 1
	if m > 0 {
		n = max(1, int(math.Ceil(math.Sqrt(0.75*m/r.Flatness))))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

// linear applies the linear part of the CTM, without translation.
func (r *Rasteriser) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// addPolygonEdges adds the edges of a polygon.  Open polygons are closed
// implicitly, as required for filling.
func (r *Rasteriser) addPolygonEdges(poly []vec.Vec2, _ bool) {
	for i := 1; i < len(poly); i++ {
		r.addEdge(poly[i-1], poly[i])
	}
	if first, last := poly[0], poly[len(poly)-1]; first != last {
		r.addEdge(last, first)
	}
}

// addEdge transforms a user space segment to device space and
// appends it to the edge list.  Horizontal segments are dropped.
func (r *Rasteriser) addEdge(a, b vec.Vec2) {
	m := r.CTM
	x0 := m[0]*a.X + m[2]*a.Y + m[4]
	y0 := m[1]*a.X + m[3]*a.Y + m[5]
	x1 := m[0]*b.X + m[2]*b.Y + m[4]
	y1 := m[1]*b.X + m[3]*b.Y + m[5]

	if math.Abs(y1-y0) < horizontalEdgeThreshold {
		return
	}

	e := edge{dir: 1}
	if y1 < y0 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		e.dir = -1
	}
	e.xTop = x0
	e.yTop = y0
	e.yBot = y1
	e.dxdy = (x1 - x0) / (y1 - y0)
	r.edges = append(r.edges, e)

	if r.bboxEmpty {
		r.bxMin, r.bxMax = min(x0, x1), max(x0, x1)
		r.byMin, r.byMax = y0, y1
		r.bboxEmpty = false
		return
	}
	r.bxMin = min(r.bxMin, x0, x1)
	r.bxMax = max(r.bxMax, x0, x1)
	r.byMin = min(r.byMin, y0)
	r.byMax = max(r.byMax, y1)
}

// Coverage accumulation
//
// For every pixel of the current scanline two values are collected:
//
//	cover: the signed vertical extent of all edge pieces inside the pixel
//	area:  cover weighted by the fraction of the pixel to the right
//	       of the edge piece
//
// Scanning a row from left to right, the coverage of pixel i is
//
//	acc + area[i],   where acc is the sum of cover[j] for j < i,
//
// which is the signed area of the path inside the pixel.  The nonzero rule
// takes the absolute value and clamps it to 1.

// scan runs the active edge list over all rows of the bounding box
// and emits the coverage rows.
func (r *Rasteriser) scan(emit func(y, xMin int, coverage []float32)) {
	if len(r.edges) == 0 || r.bboxEmpty {
		return
	}

	xMin := max(int(math.Floor(r.bxMin)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.bxMax))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.byMin)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.byMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}

	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yTop, b.yTop)
	})

	r.active = r.active[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		top := float64(y)
		bot := top + 1

		for next < len(r.edges) && r.edges[next].yTop < bot {
			r.active = append(r.active, next)
			next++
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.yBot <= top {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			if r.accumulate(e, top, bot, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrateNonZero(r.cover, r.area)
		if row, offs := trimZeros(r.cover); row != nil {
			emit(y, xMin+offs, row)
		}
	}
}

// accumulate adds the part of e between the scanline boundaries top and
// bot to the cover and area buffers.  Pixels left of xMin are folded into
// the first buffer entry.  The return value reports whether anything was
// added.
func (r *Rasteriser) accumulate(e *edge, top, bot float64, xMin, xMax int) bool {
	y0 := max(top, e.yTop)
	y1 := min(bot, e.yBot)
	if y1 <= y0 {
		return false
	}
	x0 := e.xAt(y0)
	x1 := e.xAt(y1)

	// Split the piece where it crosses vertical pixel boundaries.  The
	// crossings are generated in order of increasing y.
	r.splits = append(r.splits[:0], y0)
	if x1 > x0 {
		for k := math.Floor(x0) + 1; k < x1; k++ {
			r.splits = append(r.splits, y0+(k-x0)/e.dxdy)
		}
	} else if x1 < x0 {
		for k := math.Ceil(x0) - 1; k > x1; k-- {
			r.splits = append(r.splits, y0+(k-x0)/e.dxdy)
		}
	}
	r.splits = append(r.splits, y1)

	added := false
	for i := 1; i < len(r.splits); i++ {
		ya, yb := r.splits[i-1], r.splits[i]
		if yb <= ya {
			continue
		}
		c := e.dir * float32(yb-ya)
		xm := e.xAt((ya + yb) / 2)
		pix := int(math.Floor(xm))

		switch {
		case pix < xMin:
			r.cover[0] += c
			r.area[0] += c
		case pix < xMax:
			idx := pix - xMin
			r.cover[idx] += c
			r.area[idx] += c * float32(1-(xm-float64(pix)))
		default:
			continue // right of the clip region
		}
		added = true
	}
	return added
}

// integrateNonZero turns the accumulated cover and area values into
// coverage, in place, using the nonzero winding rule.
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

// trimZeros strips zero coverage from both ends of a row.
// It returns nil if the whole row is zero.
func trimZeros(row []float32) ([]float32, int) {
	lo, hi := 0, len(row)
	for lo < hi && row[lo] == 0 {
		lo++
	}
	for hi > lo && row[hi-1] == 0 {
		hi--
	}
	if lo == hi {
		return nil, 0
	}
	return row[lo:hi], lo
}

const (
	// defaultFlatness is the default curve tolerance in device pixels.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent of an edge,
	// in device pixels.  Flatter edges do not contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// zeroLengthThreshold is the minimum length of a stroked segment,
	// in user space units.
	zeroLengthThreshold = 1e-10
)
