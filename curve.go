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

package riemann

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Linspace returns n evenly spaced points from a to b, both included.
// n must be at least 2.
func Linspace(a, b float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("linspace with %d points: %w", n, ErrInvalidArgument)
	}
	if err := checkArgs(a, b, n); err != nil {
		return nil, err
	}

	xs := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range xs {
		xs[i] = a + float64(i)*step
	}
	xs[n-1] = b // avoid rounding past the end
	return xs, nil
}

// SampleCurve evaluates f at n evenly spaced points in [a, b] and returns
// the points of the graph.  This is used to draw the true curve behind the
// rectangles of a Riemann sum.
func SampleCurve(f Func, a, b float64, n int) ([]vec.Vec2, error) {
	xs, err := Linspace(a, b, n)
	if err != nil {
		return nil, err
	}

	pts := make([]vec.Vec2, len(xs))
	for i, x := range xs {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, &EvalError{Index: i, X: x, Value: y, Err: ErrNotFinite}
		}
		pts[i] = vec.Vec2{X: x, Y: y}
	}
	return pts, nil
}

// SamplePoints returns the points (x, f(x)) where the rule evaluated the
// function, one per rectangle of res.  If rule is not one of Left, Right
// or Midpoint, the result is nil.
func SamplePoints(res *Result, rule Rule) []vec.Vec2 {
	if !rule.valid() {
		return nil
	}
	pts := make([]vec.Vec2, len(res.Rectangles))
	for i, r := range res.Rectangles {
		pts[i] = vec.Vec2{X: rule.Sample(r.XLeft, r.XRight()), Y: r.Height}
	}
	return pts
}
