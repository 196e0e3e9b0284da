package series

import (
	"github.com/montanaflynn/stats"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the values of a cartesian series.
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Summarize computes a Summary. An empty input yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	data := stats.Float64Data(values)

	s := Summary{Count: len(values)}
	s.Sum, _ = stats.Sum(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	if len(values) > 1 {
		s.StdDev, _ = stats.StandardDeviationSample(data)
	}
	return s
}

// Fit is the least squares line y = Intercept + Slope*x through a scatter series.
type Fit struct {
	Correlation float64 `json:"correlation"`
	Intercept   float64 `json:"intercept"`
	Slope       float64 `json:"slope"`
}

// FitLine computes a Fit. It reports false when fewer than two points exist
// or all x values are equal.
func FitLine(s models.ScatterSeries) (Fit, bool) {
	if s.Len() < 2 {
		return Fit{}, false
	}
	xs, ys := s.XValues(), s.YValues()
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	fit := Fit{Intercept: alpha, Slope: beta}
	if stat.Variance(ys, nil) != 0 {
		fit.Correlation = stat.Correlation(xs, ys, nil)
	}
	return fit, true
}

// Description carries the statistics shown next to a chart.
type Description struct {
	Summary *Summary `json:"summary,omitempty"`
	Fit     *Fit     `json:"fit,omitempty"`
}

// Describe returns a Description of r.
func Describe(r Result) Description {
	var d Description
	switch {
	case r.Scatter != nil:
		if fit, ok := FitLine(*r.Scatter); ok {
			d.Fit = &fit
		}
		ys := r.Scatter.YValues()
		sum := Summarize(ys)
		d.Summary = &sum
	case r.Series != nil:
		sum := Summarize(r.Series.Values)
		d.Summary = &sum
	}
	return d
}
