// Package export renders chart results to images and documents and hands
// original uploads back to the user.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
)

// Default image size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// RenderOptions controls image output.
type RenderOptions struct {
	Width  int
	Height int
	// Title overrides the default "<y> vs <x>" caption.
	Title string
}

func (o RenderOptions) withDefaults(res series.Result) RenderOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Title == "" {
		o.Title = res.Label()
	}
	return o
}

// pointStyle draws markers without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// RenderPNG draws res as a PNG image. An empty result returns ErrNoData.
func RenderPNG(res series.Result, w io.Writer, opts RenderOptions) error {
	if res.Empty() {
		return sheetchart.NewPipelineError("render", "", sheetchart.ErrNoData)
	}
	opts = opts.withDefaults(res)

	var err error
	switch res.Kind {
	case models.ChartPie:
		err = renderPie(res, w, opts, false)
	case models.ChartDoughnut:
		err = renderPie(res, w, opts, true)
	case models.ChartLine:
		err = renderLine(res, w, opts)
	case models.ChartScatter:
		err = renderScatter(res, w, opts)
	default:
		err = renderBar(res, w, opts)
	}
	if err != nil {
		return sheetchart.NewPipelineError("render", "", err)
	}
	return nil
}

func chartValues(s *models.Series) []chart.Value {
	values := make([]chart.Value, len(s.Values))
	for i, v := range s.Values {
		values[i] = chart.Value{Value: v, Label: s.Labels[i].String()}
	}
	return values
}

func renderBar(res series.Result, w io.Writer, opts RenderOptions) error {
	values := chartValues(res.Series)
	const barWidth, barSpacing = 40, 20
	width := opts.Width
	if need := len(values)*(barWidth+barSpacing) + 120; need > width {
		width = need
	}

	lo, hi := 0.0, 0.0
	for _, v := range res.Series.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	bc := chart.BarChart{
		Title:      opts.Title,
		Width:      width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: paddedRange(lo, hi)},
		Bars:       values,
	}
	return bc.Render(chart.PNG, w)
}

// renderPie draws a pie or doughnut. Slices must be positive, so zero and
// negative values are left out.
func renderPie(res series.Result, w io.Writer, opts RenderOptions, donut bool) error {
	var values []chart.Value
	for _, v := range chartValues(res.Series) {
		if v.Value > 0 {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: no positive values", sheetchart.ErrNoData)
	}

	if donut {
		dc := chart.DonutChart{
			Title:  opts.Title,
			Width:  opts.Height,
			Height: opts.Height,
			Values: values,
		}
		return dc.Render(chart.PNG, w)
	}
	pc := chart.PieChart{
		Title:  opts.Title,
		Width:  opts.Height,
		Height: opts.Height,
		Values: values,
	}
	return pc.Render(chart.PNG, w)
}

func renderLine(res series.Result, w io.Writer, opts RenderOptions) error {
	n := len(res.Series.Values)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i := range xs {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: res.Series.Labels[i].String()}
	}
	lo, hi := bounds(res.Series.Values)

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Range: paddedRange(lo, hi)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    res.Label(),
				XValues: xs,
				YValues: res.Series.Values,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2, DotWidth: 3, DotColor: chart.ColorBlue},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func renderScatter(res series.Result, w io.Writer, opts RenderOptions) error {
	xs := res.Scatter.XValues()
	ys := res.Scatter.YValues()
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      chart.XAxis{Name: res.Selection.XColumn, Range: paddedRange(xlo, xhi)},
		YAxis:      chart.YAxis{Name: res.Selection.YColumn, Range: paddedRange(ylo, yhi)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    res.Label(),
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(chart.ColorBlue),
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [lo, hi] by five percent on each side. A zero-width
// range, which go-chart refuses to draw, becomes [lo-1, hi+1].
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if hi-lo == 0 {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
