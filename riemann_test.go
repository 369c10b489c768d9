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
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// redirectTracing routes the package tracer to the test log.
func redirectTracing(t *testing.T) {
	tr := gotestingadapter.New(t)
	tr.SetTraceLevel(tracing.LevelDebug)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace { return tr }))
	t.Cleanup(func() { tracing.SetTraceSelector(nil) })
}

func sinPlusOne(x float64) float64 { return math.Sin(x) + 1 }
func quadratic(x float64) float64  { return 3*x + 2*x*x }

func TestRectangles(t *testing.T) {
	redirectTracing(t)

	// all values are exact binary fractions
	identity := func(x float64) float64 { return x }
	cases := []struct {
		rule  Rule
		total float64
		rects []Rectangle
	}{
		{Left, 0.375, []Rectangle{
			{XLeft: 0, Height: 0, Width: 0.25},
			{XLeft: 0.25, Height: 0.25, Width: 0.25},
			{XLeft: 0.5, Height: 0.5, Width: 0.25},
			{XLeft: 0.75, Height: 0.75, Width: 0.25},
		}},
		{Right, 0.625, []Rectangle{
			{XLeft: 0, Height: 0.25, Width: 0.25},
			{XLeft: 0.25, Height: 0.5, Width: 0.25},
			{XLeft: 0.5, Height: 0.75, Width: 0.25},
			{XLeft: 0.75, Height: 1, Width: 0.25},
		}},
		{Midpoint, 0.5, []Rectangle{
			{XLeft: 0, Height: 0.125, Width: 0.25},
			{XLeft: 0.25, Height: 0.375, Width: 0.25},
			{XLeft: 0.5, Height: 0.625, Width: 0.25},
			{XLeft: 0.75, Height: 0.875, Width: 0.25},
		}},
	}
	for _, c := range cases {
		t.Run(c.rule.String(), func(t *testing.T) {
			res, err := Sum(identity, 0, 1, 4, c.rule)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(c.rects, res.Rectangles); d != "" {
				t.Errorf("rectangles (-want +got):\n%s", d)
			}
			if res.Total != c.total {
				t.Errorf("total = %g, want %g", res.Total, c.total)
			}
		})
	}
}

func TestInvariants(t *testing.T) {
	funcs := []struct {
		name string
		f    Func
		a, b float64
	}{
		{"sin", sinPlusOne, -math.Pi, math.Pi},
		{"quadratic", quadratic, 0, 1},
		{"log", math.Log, 1, math.E},
		{"cos", math.Cos, -3, 7.5},
	}
	for _, fn := range funcs {
		for _, n := range []int{1, 2, 3, 7, 10, 64, 1000} {
			for _, rule := range Rules {
				name := fmt.Sprintf("%s_%d_%s", fn.name, n, rule)
				t.Run(name, func(t *testing.T) {
					res, err := Sum(fn.f, fn.a, fn.b, n, rule)
					if err != nil {
						t.Fatal(err)
					}
					if len(res.Rectangles) != n {
						t.Fatalf("got %d rectangles, want %d", len(res.Rectangles), n)
					}

					dx := (fn.b - fn.a) / float64(n)
					var width, total float64
					for i, r := range res.Rectangles {
						xLeft := fn.a + float64(i)*dx
						if r.XLeft != xLeft {
							t.Errorf("rectangle %d: x_left = %g, want %g", i, r.XLeft, xLeft)
						}
						if r.Width != dx {
							t.Errorf("rectangle %d: width = %g, want %g", i, r.Width, dx)
						}
						want := fn.f(rule.Sample(xLeft, xLeft+dx))
						if r.Height != want {
							t.Errorf("rectangle %d: height = %g, want %g", i, r.Height, want)
						}
						width += r.Width
						total += r.Height * r.Width
					}

					length := fn.b - fn.a
					if math.Abs(width-length) > 1e-9*length {
						t.Errorf("widths add up to %g, want %g", width, length)
					}
					if total != res.Total {
						t.Errorf("total = %.17g, re-accumulated %.17g", res.Total, total)
					}
				})
			}
		}
	}
}

func TestSamplePoint(t *testing.T) {
	a, b, n := -1.0, 2.0, 6
	dx := (b - a) / float64(n)

	var seen []float64
	record := func(x float64) float64 {
		seen = append(seen, x)
		return 1
	}

	for _, rule := range Rules {
		seen = seen[:0]
		if _, err := Sum(record, a, b, n, rule); err != nil {
			t.Fatal(err)
		}
		for i, x := range seen {
			left := a + float64(i)*dx
			right := left + dx
			var want float64
			switch rule {
			case Left:
				want = left
			case Right:
				want = right
			case Midpoint:
				want = (left + right) / 2
			}
			if x != want {
				t.Errorf("%s: sample %d at %g, want %g", rule, i, x, want)
			}
		}
		if len(seen) != n {
			t.Errorf("%s: %d evaluations, want %d", rule, len(seen), n)
		}
	}
}

func TestScenarios(t *testing.T) {
	redirectTracing(t)

	exactQuadratic := 1.5 + 2.0/3.0

	res, err := Sum(sinPlusOne, -math.Pi, math.Pi, 4, Midpoint)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Total-2*math.Pi) > 1e-4 {
		t.Errorf("sin(x)+1 midpoint: %g, want %g", res.Total, 2*math.Pi)
	}

	res, err = Sum(quadratic, 0, 1, 10, Left)
	if err != nil {
		t.Fatal(err)
	}
	if !(res.Total < exactQuadratic) || math.Abs(res.Total-1.92) > 1e-4 {
		t.Errorf("quadratic left: %g, want 1.92 < %g", res.Total, exactQuadratic)
	}

	res, err = Sum(quadratic, 0, 1, 10, Right)
	if err != nil {
		t.Fatal(err)
	}
	if !(res.Total > exactQuadratic) || math.Abs(res.Total-2.42) > 1e-4 {
		t.Errorf("quadratic right: %g, want 2.42 > %g", res.Total, exactQuadratic)
	}

	// ∫_1^e ln(x) dx = [x ln x - x]_1^e = 1
	res, err = Sum(math.Log, 1, math.E, 8, Midpoint)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Total-1) > 1e-2 {
		t.Errorf("ln(x) midpoint: %g, want 1", res.Total)
	}
}

func TestRefinement(t *testing.T) {
	for _, f := range []Func{sinPlusOne, quadratic, math.Exp} {
		gap := func(n int) (float64, float64) {
			left, err := Sum(f, 0, 2, n, Left)
			if err != nil {
				t.Fatal(err)
			}
			right, err := Sum(f, 0, 2, n, Right)
			if err != nil {
				t.Fatal(err)
			}
			mid, err := Sum(f, 0, 2, n, Midpoint)
			if err != nil {
				t.Fatal(err)
			}
			lr := math.Abs(left.Total - right.Total)
			lm := math.Abs((left.Total+right.Total)/2 - mid.Total)
			return lr, lm
		}

		lr10, lm10 := gap(10)
		lr1000, lm1000 := gap(1000)
		if !(lr1000 < lr10) {
			t.Errorf("left-right gap did not narrow: %g -> %g", lr10, lr1000)
		}
		if !(lm1000 <= lm10) {
			t.Errorf("distance to midpoint sum did not narrow: %g -> %g", lm10, lm1000)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, rule := range Rules {
		r1, err := Sum(math.Log, 1, math.E, 37, rule)
		if err != nil {
			t.Fatal(err)
		}
		r2, err := Sum(math.Log, 1, math.E, 37, rule)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(r1, r2); d != "" {
			t.Errorf("%s: results differ (-first +second):\n%s", rule, d)
		}
		if &r1.Rectangles[0] == &r2.Rectangles[0] {
			t.Errorf("%s: results share storage", rule)
		}
	}
}

func TestInvalidArgument(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		n    int
		rule Rule
	}{
		{"zero_n", 0, 1, 0, Left},
		{"negative_n", 0, 1, -3, Midpoint},
		{"nan_a", math.NaN(), 1, 4, Left},
		{"inf_b", 0, math.Inf(1), 4, Right},
		{"empty", 1, 1, 4, Left},
		{"reversed", 2, 1, 4, Left},
		{"bad_rule", 0, 1, 4, Rule(7)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			calls := 0
			f := func(x float64) float64 {
				calls++
				return x
			}
			res, err := Sum(f, c.a, c.b, c.n, c.rule)
			if !errors.Is(err, ErrInvalidArgument) || !IsInvalidArgument(err) {
				t.Fatalf("got error %v, want ErrInvalidArgument", err)
			}
			if res != nil {
				t.Errorf("got partial result %v", res)
			}
			if calls != 0 {
				t.Errorf("function called %d times", calls)
			}
		})
	}
}

func TestEvalError(t *testing.T) {
	// interval includes x <= 0, where ln is not finite
	res, err := Sum(math.Log, -1, 1, 4, Left)
	if res != nil {
		t.Errorf("got partial result %v", res)
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("got error %v, want *EvalError", err)
	}
	if !errors.Is(err, ErrNotFinite) || !IsEvalError(err) {
		t.Errorf("error %v does not unwrap to ErrNotFinite", err)
	}
	if evalErr.Index != 0 || evalErr.X != -1 {
		t.Errorf("failure at index %d, x=%g; want index 0, x=-1", evalErr.Index, evalErr.X)
	}

	// errors reported by the function are passed through unchanged
	errDomain := errors.New("outside of domain")
	calls := 0
	fe := func(x float64) (float64, error) {
		calls++
		if x > 0.5 {
			return 0, errDomain
		}
		return x, nil
	}
	res, err = SumE(fe, 0, 1, 4, Right)
	if res != nil {
		t.Errorf("got partial result %v", res)
	}
	if !errors.Is(err, errDomain) {
		t.Errorf("got error %v, want %v", err, errDomain)
	}
	if calls != 3 {
		t.Errorf("function called %d times, want 3", calls)
	}
	if IsInvalidArgument(err) {
		t.Errorf("evaluation failure reported as invalid argument")
	}
}

func TestPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v, want boom", r)
		}
	}()
	Sum(func(float64) float64 { panic("boom") }, 0, 1, 3, Left)
	t.Error("panic was swallowed")
}

func TestParseRule(t *testing.T) {
	for _, rule := range Rules {
		got, err := ParseRule(rule.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != rule {
			t.Errorf("ParseRule(%q) = %s", rule.String(), got)
		}
	}
	if got, err := ParseRule(" MidPoint "); err != nil || got != Midpoint {
		t.Errorf("ParseRule(\" MidPoint \") = %s, %v", got, err)
	}
	if _, err := ParseRule("trapezoid"); !IsInvalidArgument(err) {
		t.Errorf("ParseRule(\"trapezoid\") error = %v", err)
	}
}

func TestConcurrentSums(t *testing.T) {
	want, err := Sum(quadratic, 0, 1, 500, Midpoint)
	if err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 8)
	for range 8 {
		go func() {
			got, err := Sum(quadratic, 0, 1, 500, Midpoint)
			if err == nil && got.Total != want.Total {
				err = fmt.Errorf("total %.17g, want %.17g", got.Total, want.Total)
			}
			errs <- err
		}()
	}
	for range 8 {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
