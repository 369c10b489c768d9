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

// Package riemann approximates definite integrals of real functions by
// left, right and midpoint Riemann sums.
//
// Besides the value of the sum, every computation returns the geometry of
// the approximating rectangles, ordered from left to right, so that the
// result can be drawn against the true curve (see package
// seehuhn.de/go/riemann/plot).
package riemann

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to the trace with key 'riemann'.
func tracer() tracing.Trace {
	return tracing.Select("riemann")
}

// Rule selects the point within each subinterval where the function
// is evaluated.
type Rule int

// These are the supported sampling rules.
const (
	Left     Rule = iota // left endpoint of each subinterval
	Right                // right endpoint of each subinterval
	Midpoint             // midpoint of each subinterval
)

// Rules lists all sampling rules, in the order Left, Right, Midpoint.
var Rules = []Rule{Left, Right, Midpoint}

func (r Rule) String() string {
	switch r {
	case Left:
		return "left"
	case Right:
		return "right"
	case Midpoint:
		return "midpoint"
	}
	return fmt.Sprintf("Rule(%d)", int(r))
}

// ParseRule converts a rule name ("left", "right" or "midpoint") to a
// Rule. Case is ignored.
func ParseRule(s string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "midpoint", "mid":
		return Midpoint, nil
	}
	return 0, fmt.Errorf("unknown sampling rule %q: %w", s, ErrInvalidArgument)
}

func (r Rule) valid() bool {
	return r >= Left && r <= Midpoint
}

// Sample returns the abscissa at which the function is evaluated for the
// subinterval [xLeft, xRight].  Values of r other than Left, Right and
// Midpoint are treated like Left; Sum and SumE reject them before
// sampling.
func (r Rule) Sample(xLeft, xRight float64) float64 {
	switch r {
	case Right:
		return xRight
	case Midpoint:
		return (xLeft + xRight) / 2
	default:
		return xLeft
	}
}

// Rectangle is one approximating rectangle of a Riemann sum.
type Rectangle struct {
	XLeft  float64 // left edge
	Height float64 // function value at the sample point, may be negative
	Width  float64 // width of the subinterval
}

// XRight returns the right edge of the rectangle.
func (r Rectangle) XRight() float64 {
	return r.XLeft + r.Width
}

// Area returns the signed area Height*Width.
func (r Rectangle) Area() float64 {
	return r.Height * r.Width
}

// Result is the outcome of one Riemann sum computation.
type Result struct {
	// Total is the sum of Height*Width over all rectangles, accumulated
	// from left to right.
	Total float64

	// Rectangles holds one rectangle per subinterval, ordered from left
	// to right.
	Rectangles []Rectangle
}

// Func is a real function of one real variable.
type Func func(x float64) float64

// FuncE is a real function which may fail to evaluate.
type FuncE func(x float64) (float64, error)

// Sum computes the Riemann sum of f over [a, b] with n subintervals of
// equal width, evaluating f at the point selected by rule.
//
// The arguments must satisfy n >= 1 and a < b, with a and b finite.
// Otherwise an error wrapping ErrInvalidArgument is returned.
// If f returns a value which is not finite, an *EvalError is returned.
// In both cases the result is nil.
func Sum(f Func, a, b float64, n int, rule Rule) (*Result, error) {
	return SumE(func(x float64) (float64, error) { return f(x), nil }, a, b, n, rule)
}

// SumE is like Sum, but for functions which may report errors.
// An error returned by f is wrapped in an *EvalError and returned
// to the caller; no partial result is produced.
func SumE(f FuncE, a, b float64, n int, rule Rule) (*Result, error) {
	if err := checkArgs(a, b, n); err != nil {
		return nil, err
	}
	if !rule.valid() {
		return nil, fmt.Errorf("sampling rule %d: %w", int(rule), ErrInvalidArgument)
	}

	tracer().Debugf("riemann: %s sum on [%g, %g] with n=%d", rule, a, b, n)

	dx := (b - a) / float64(n)
	res := &Result{
		Rectangles: make([]Rectangle, 0, n),
	}
	for i := range n {
		xLeft := a + float64(i)*dx
		xRight := xLeft + dx
		x := rule.Sample(xLeft, xRight)

		height, err := f(x)
		if err == nil && (math.IsNaN(height) || math.IsInf(height, 0)) {
			err = ErrNotFinite
		}
		if err != nil {
			return nil, &EvalError{Index: i, X: x, Value: height, Err: err}
		}

		res.Total += height * dx
		res.Rectangles = append(res.Rectangles, Rectangle{
			XLeft:  xLeft,
			Height: height,
			Width:  dx,
		})
	}
	return res, nil
}

// checkArgs validates the interval and the subdivision count.
func checkArgs(a, b float64, n int) error {
	if n < 1 {
		return fmt.Errorf("n=%d subintervals: %w", n, ErrInvalidArgument)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return fmt.Errorf("interval [%g, %g] is not finite: %w", a, b, ErrInvalidArgument)
	}
	if !(a < b) {
		return fmt.Errorf("interval [%g, %g] is empty or reversed: %w", a, b, ErrInvalidArgument)
	}
	return nil
}
