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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/geom/vec"
)

func TestLinspace(t *testing.T) {
	xs, err := Linspace(0, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{0, 0.25, 0.5, 0.75, 1}, xs); d != "" {
		t.Error(d)
	}

	xs, err = Linspace(-math.Pi, math.Pi, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if xs[0] != -math.Pi || xs[len(xs)-1] != math.Pi {
		t.Errorf("end points %g, %g", xs[0], xs[len(xs)-1])
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			t.Fatalf("not increasing at %d", i)
		}
	}

	for _, n := range []int{-1, 0, 1} {
		if _, err := Linspace(0, 1, n); !IsInvalidArgument(err) {
			t.Errorf("n=%d: got %v", n, err)
		}
	}
}

func TestSampleCurve(t *testing.T) {
	pts, err := SampleCurve(func(x float64) float64 { return x * x }, 0, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 4}}
	if d := cmp.Diff(want, pts); d != "" {
		t.Error(d)
	}

	// ln is -Inf at the left end of [0, 1]
	_, err = SampleCurve(math.Log, 0, 1, 10)
	if !IsEvalError(err) {
		t.Errorf("expected evaluation error, got %v", err)
	}
}

func TestSamplePoints(t *testing.T) {
	f := func(x float64) float64 { return 2 * x }
	for _, rule := range Rules {
		res, err := Sum(f, 0, 1, 4, rule)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range SamplePoints(res, rule) {
			if p.Y != f(p.X) {
				t.Errorf("%s, rectangle %d: point %v is not on the graph", rule, i, p)
			}
			r := res.Rectangles[i]
			if p.X < r.XLeft || p.X > r.XRight() {
				t.Errorf("%s, rectangle %d: sample %g outside [%g, %g]",
					rule, i, p.X, r.XLeft, r.XRight())
			}
		}
	}
}

func TestSamplePointsInvalidRule(t *testing.T) {
	res, err := Sum(func(x float64) float64 { return x }, 0, 1, 4, Left)
	if err != nil {
		t.Fatal(err)
	}
	if pts := SamplePoints(res, Rule(7)); pts != nil {
		t.Errorf("got %v for an unknown rule", pts)
	}
}
