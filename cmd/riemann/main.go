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

// Command riemann computes left, right and midpoint Riemann sums for the
// example integrals and draws a figure for each of them.
//
// For every example, one figure per rule and a combined figure are
// written to the output directory, as <slug>_<rule>.png and
// <slug>_all.png (or .pdf).
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"seehuhn.de/go/riemann"
	"seehuhn.de/go/riemann/examples"
	"seehuhn.de/go/riemann/plot"
)

// curveSamples is the number of points used to draw the integrand.
const curveSamples = 1000

func tracer() tracing.Trace {
	return tracing.Select("riemann")
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "riemann:", err)
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	tr := gologadapter.New()
	if cfg.verbose {
		tr.SetTraceLevel(tracing.LevelDebug)
	}
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace { return tr }))

	if err := run(cfg, os.Stdout); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(1)
	}
}

type config struct {
	outDir  string
	png     bool
	pdf     bool
	width   int
	height  int
	n       int // 0 means the default of each example
	jsonOut string
	jobs    int
	verbose bool
}

func parseFlags(args []string, errOut io.Writer) (*config, error) {
	flags := flag.NewFlagSet("riemann", flag.ContinueOnError)
	flags.SetOutput(errOut)

	cfg := &config{}
	flags.StringVar(&cfg.outDir, "out", ".", "output directory")
	format := flags.String("format", "png", "output format: png, pdf or both")
	size := flags.String("size", "1000x600", "figure size as WxH")
	flags.IntVar(&cfg.n, "n", 0, "number of subintervals (0 uses the default of each example)")
	flags.StringVar(&cfg.jsonOut, "json", "", "write all results as JSON to this file")
	flags.IntVar(&cfg.jobs, "j", 1, "number of figures to draw in parallel")
	flags.BoolVar(&cfg.verbose, "v", false, "enable debug tracing")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}

	switch *format {
	case "png":
		cfg.png = true
	case "pdf":
		cfg.pdf = true
	case "both":
		cfg.png, cfg.pdf = true, true
	default:
		return nil, fmt.Errorf("invalid format %q", *format)
	}

	w, h, ok := strings.Cut(*size, "x")
	var errW, errH error
	cfg.width, errW = strconv.Atoi(w)
	cfg.height, errH = strconv.Atoi(h)
	if !ok || errW != nil || errH != nil || cfg.width <= 0 || cfg.height <= 0 {
		return nil, fmt.Errorf("invalid size %q", *size)
	}

	if cfg.n < 0 {
		return nil, fmt.Errorf("invalid number of subintervals %d", cfg.n)
	}
	if cfg.jobs < 1 {
		return nil, fmt.Errorf("invalid number of jobs %d", cfg.jobs)
	}
	return cfg, nil
}

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed, color.Bold)
)

// figureErrors collects the errors of the figure jobs, which run
// concurrently.
type figureErrors struct {
	mu    sync.Mutex
	files []string
	errs  []error
	slugs map[string]bool
}

func (fe *figureErrors) add(slug, fileName string, err error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.files = append(fe.files, fileName)
	fe.errs = append(fe.errs, err)
	if fe.slugs == nil {
		fe.slugs = make(map[string]bool)
	}
	fe.slugs[slug] = true
}

// run processes all examples.  A failing example or figure is reported
// and the remaining ones are still processed; in this case the returned
// error summarises the failures.  Examples with failed figures are left
// out of the JSON output.
func run(cfg *config, out io.Writer) error {
	if err := os.MkdirAll(cfg.outDir, 0755); err != nil {
		return err
	}

	fmt.Fprintln(out, "Generating all Riemann sum visualizations...")

	g := &errgroup.Group{}
	g.SetLimit(cfg.jobs)
	figErrs := &figureErrors{}

	var results []jsonResult
	failedExamples := 0
	for k, in := range examples.All {
		if cfg.n > 0 {
			in = in.WithN(cfg.n)
		}

		fmt.Fprintln(out)
		headerColor.Fprintf(out, "=== Part %d: %s on %s ===\n", k+1, in.Name, in.Interval)

		jr, err := runExample(g, cfg, out, in, figErrs)
		if err != nil {
			tracer().Errorf("%s: %v", in.Slug, err)
			failureColor.Fprintf(out, "failed: %v\n", err)
			failedExamples++
			continue
		}
		results = append(results, *jr)
	}

	// The jobs report their errors through figErrs, so that all of them
	// are counted rather than only the first.
	_ = g.Wait()

	if len(figErrs.errs) > 0 {
		fmt.Fprintln(out)
		for i, err := range figErrs.errs {
			failureColor.Fprintf(out, "failed: %s: %v\n", figErrs.files[i], err)
		}
		kept := results[:0]
		for _, jr := range results {
			if !figErrs.slugs[jr.Slug] {
				kept = append(kept, jr)
			}
		}
		results = kept
	}

	var problems []string
	if failedExamples > 0 {
		problems = append(problems, fmt.Sprintf("%d example(s) failed", failedExamples))
	}
	if n := len(figErrs.errs); n > 0 {
		problems = append(problems, fmt.Sprintf("%d figure(s) failed", n))
	}

	if cfg.jsonOut != "" {
		if err := writeJSON(cfg.jsonOut, results); err != nil {
			tracer().Errorf("%v", err)
			failureColor.Fprintf(out, "failed: %v\n", err)
			problems = append(problems, "JSON output failed")
		}
	}

	fmt.Fprintln(out)
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	successColor.Fprintln(out, "All plots generated successfully!")
	return nil
}

// runExample computes the sums for one integral and schedules the
// figures for drawing.
func runExample(g *errgroup.Group, cfg *config, out io.Writer, in examples.Integral, figErrs *figureErrors) (*jsonResult, error) {
	curve, err := riemann.SampleCurve(in.F, in.A, in.B, curveSamples)
	if err != nil {
		return nil, err
	}

	jr := &jsonResult{
		Name:  in.Name,
		Slug:  in.Slug,
		A:     in.A,
		B:     in.B,
		N:     in.N,
		Exact: in.Value,
	}
	var sums []plot.Sum
	for _, rule := range riemann.Rules {
		res, err := in.Sum(rule)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "%-8s %12.6f   (error %+.6f)\n",
			plot.RuleName(rule)+":", res.Total, res.Total-in.Value)

		sums = append(sums, plot.Sum{Rule: rule, Result: res})
		jr.Sums = append(jr.Sums, toJSON(rule, res, in.Value))
	}

	for _, s := range sums {
		fig := plot.RuleFigure(in.Name, curve, s.Result, s.Rule)
		schedule(g, cfg, fig, in.Slug, s.Rule.String(), figErrs)
	}
	schedule(g, cfg, plot.CombinedFigure(in.Name, curve, sums), in.Slug, "all", figErrs)

	return jr, nil
}

// schedule queues a figure for output in all requested formats, as
// <slug>_<suffix>.png and .pdf.  If the number of running jobs has reached
// the limit, schedule blocks.
func schedule(g *errgroup.Group, cfg *config, fig *plot.Figure, slug, suffix string, figErrs *figureErrors) {
	fig.Width, fig.Height = cfg.width, cfg.height
	base := filepath.Join(cfg.outDir, slug+"_"+suffix)
	g.Go(func() error {
		if cfg.png {
			fileName := base + ".png"
			if err := writePNG(fig, fileName); err != nil {
				tracer().Errorf("%s: %v", fileName, err)
				figErrs.add(slug, fileName, err)
				return err
			}
		}
		if cfg.pdf {
			fileName := base + ".pdf"
			if err := fig.WritePDF(fileName); err != nil {
				tracer().Errorf("%s: %v", fileName, err)
				figErrs.add(slug, fileName, err)
				return err
			}
		}
		return nil
	})
}

func writePNG(fig *plot.Figure, fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}
	err = fig.WritePNG(f)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type jsonResult struct {
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	A     float64   `json:"a"`
	B     float64   `json:"b"`
	N     int       `json:"n"`
	Exact float64   `json:"exact"`
	Sums  []jsonSum `json:"sums"`
}

type jsonSum struct {
	Rule       string     `json:"rule"`
	Total      float64    `json:"total"`
	Error      float64    `json:"error"`
	Rectangles []jsonRect `json:"rectangles"`
}

type jsonRect struct {
	XLeft  float64 `json:"x_left"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

func toJSON(rule riemann.Rule, res *riemann.Result, exact float64) jsonSum {
	js := jsonSum{
		Rule:  rule.String(),
		Total: res.Total,
		Error: res.Total - exact,
	}
	for _, r := range res.Rectangles {
		js.Rectangles = append(js.Rectangles, jsonRect{
			XLeft:  r.XLeft,
			Height: r.Height,
			Width:  r.Width,
		})
	}
	return js
}

func writeJSON(fileName string, results []jsonResult) error {
	f, err := os.Create(fileName)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err = enc.Encode(struct {
		Results []jsonResult `json:"results"`
	}{results})
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
