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
)

var (
	// ErrInvalidArgument is wrapped by all errors caused by a bad
	// interval, subdivision count or sampling rule.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFinite indicates that the integrand returned NaN or an
	// infinite value.
	ErrNotFinite = errors.New("function value is not finite")
)

// EvalError reports that the integrand could not be evaluated at one of
// the sample points.
type EvalError struct {
	Index int     // subinterval (or curve sample) index
	X     float64 // the point where evaluation failed
	Value float64 // the value returned by the function, if any
	Err   error   // the function's error, or ErrNotFinite
}

func (e *EvalError) Error() string {
	if errors.Is(e.Err, ErrNotFinite) {
		return fmt.Sprintf("f(%g) = %g at sample %d: %s", e.X, e.Value, e.Index, e.Err)
	}
	return fmt.Sprintf("f(%g) failed at sample %d: %s", e.X, e.Index, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsInvalidArgument reports whether err was caused by invalid arguments.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsEvalError reports whether err was caused by a failing function
// evaluation.
func IsEvalError(err error) bool {
	var e *EvalError
	return errors.As(err, &e)
}
