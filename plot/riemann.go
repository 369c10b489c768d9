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
	"image/color"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/riemann"
)

// RuleName returns the capitalised name of a sampling rule, for titles
// and legends.
func RuleName(rule riemann.Rule) string {
	switch rule {
	case riemann.Left:
		return "Left"
	case riemann.Right:
		return "Right"
	case riemann.Midpoint:
		return "Midpoint"
	}
	return rule.String()
}

// RuleStyle returns the bar style for a sampling rule: red for left,
// green for right and purple for midpoint sums.  The fill uses the given
// opacity, the edges are opaque.
func RuleStyle(rule riemann.Rule, alpha float64) Style {
	var c color.NRGBA
	var gray float64
	switch rule {
	case riemann.Left:
		c, gray = color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, 0.55
	case riemann.Right:
		c, gray = color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, 0.7
	default:
		c, gray = color.NRGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}, 0.85
	}
	fill := c
	fill.A = uint8(alpha*255 + 0.5)
	return Style{
		Fill:      fill,
		Line:      c,
		LineWidth: 1.5,
		Label:     RuleName(rule),
		Gray:      gray,
	}
}

// CurveStyle is used for the graph of the integrand.
var CurveStyle = Style{
	Line:      color.NRGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff},
	LineWidth: 2,
	Gray:      0,
}

// Sum is the outcome of one rule, as shown in a combined figure.
type Sum struct {
	Rule   riemann.Rule
	Result *riemann.Result
}

// RuleFigure returns the figure for a single Riemann sum: the rectangles,
// the sample points and the true curve, titled with the function name and
// labelled with the value of the sum.
func RuleFigure(name string, curve []vec.Vec2, res *riemann.Result, rule riemann.Rule) *Figure {
	fig := New(fmt.Sprintf("%s - %s Riemann Sum", name, RuleName(rule)))
	fig.Subtitle = fmt.Sprintf("Riemann Sum: %.6f", res.Total)

	bars := RuleStyle(rule, 0.3)
	bars.Label = ""
	fig.AddBars(res, bars)
	fig.AddCurve(curve, CurveStyle)

	markers := RuleStyle(rule, 1)
	markers.Label = ""
	fig.AddMarkers(riemann.SamplePoints(res, rule), markers)
	return fig
}

// CombinedFigure shows several sums of the same function on one figure,
// with a legend entry per rule.
func CombinedFigure(name string, curve []vec.Vec2, sums []Sum) *Figure {
	n := 0
	if len(sums) > 0 {
		n = len(sums[0].Result.Rectangles)
	}
	fig := New(fmt.Sprintf("%s - All Riemann Methods (n=%d)", name, n))
	for _, s := range sums {
		fig.AddBars(s.Result, RuleStyle(s.Rule, 0.2))
	}
	curveStyle := CurveStyle
	curveStyle.Label = name
	fig.AddCurve(curve, curveStyle)
	return fig
}
