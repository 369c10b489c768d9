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

package raster

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Stroke draws the outline of every subpath of p with line width Width,
// using butt caps and bevel joins.  The emit callback has the same
// semantics as for FillNonZero.
//
// The outline is built from one quadrilateral per segment plus one
// triangle per join, all with the same orientation, and filled as a single
// compound path.  The nonzero rule then gives the union of the pieces.
func (r *Rasteriser) Stroke(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	if r.Width <= 0 {
		return
	}
	r.beginEdges()
	r.walk(p, r.addStrokeEdges)
	r.scan(emit)
}

// addStrokeEdges adds the outline pieces for one flattened subpath.
func (r *Rasteriser) addStrokeEdges(poly []vec.Vec2, closed bool) {
	d := r.Width / 2

	n := len(poly) - 1
	if closed && poly[n] != poly[0] {
		n++ // the closing segment back to the start
	}

	var prevT, firstT vec.Vec2
	havePrev := false
	for i := range n {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		T, ok := unitTangent(a, b)
		if !ok {
			continue
		}
		N := normal(T).Mul(d)
		r.addQuad(a.Add(N), b.Add(N), b.Sub(N), a.Sub(N))

		if havePrev {
			r.addBevel(a, prevT, T, d)
		} else {
			firstT = T
		}
		prevT = T
		havePrev = true
	}

	if closed && havePrev {
		r.addBevel(poly[0], prevT, firstT, d)
	}
}

// addBevel fills the gap on the outer side of the corner at P, where the
// direction changes from T1 to T2.
func (r *Rasteriser) addBevel(P, T1, T2 vec.Vec2, d float64) {
	turn := cross(T1, T2)
	if turn > -collinearityThreshold && turn < collinearityThreshold && T1.X*T2.X+T1.Y*T2.Y > 0 {
		return
	}

	N1 := normal(T1).Mul(d)
	N2 := normal(T2).Mul(d)
	if turn > 0 {
		// left turn: the gap is on the right hand side
		N1, N2 = N1.Mul(-1), N2.Mul(-1)
	}
	q1, q2 := P.Add(N1), P.Add(N2)
	if orient(P, q1, q2) > 0 {
		q1, q2 = q2, q1
	}
	r.addEdge(P, q1)
	r.addEdge(q1, q2)
	r.addEdge(q2, P)
}

// addQuad adds the closed polygon p0, p1, p2, p3.
func (r *Rasteriser) addQuad(p0, p1, p2, p3 vec.Vec2) {
	r.addEdge(p0, p1)
	r.addEdge(p1, p2)
	r.addEdge(p2, p3)
	r.addEdge(p3, p0)
}

// unitTangent returns the direction from a to b.  The second return value
// is false for segments which are too short to have a direction.
func unitTangent(a, b vec.Vec2) (vec.Vec2, bool) {
	v := b.Sub(a)
	l := v.Length()
	if l < zeroLengthThreshold {
		return vec.Vec2{}, false
	}
	return v.Mul(1 / l), true
}

// normal returns T rotated by 90 degrees counter-clockwise.
func normal(T vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -T.Y, Y: T.X}
}

func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// orient is positive if a, b, c turn counter-clockwise.
func orient(a, b, c vec.Vec2) float64 {
	return cross(b.Sub(a), c.Sub(a))
}

// collinearityThreshold is the limit on |T1 × T2| below which two
// segments are treated as collinear and need no join.
const collinearityThreshold = 1e-6
