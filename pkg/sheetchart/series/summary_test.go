package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 30, 20})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 60.0, s.Sum)
	assert.Equal(t, 20.0, s.Mean)
	assert.Equal(t, 20.0, s.Median)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 30.0, s.Max)
	assert.InDelta(t, 10.0, s.StdDev, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, 0.0, Summarize([]float64{4}).StdDev)
}

func TestFitLine(t *testing.T) {
	s := models.ScatterSeries{Points: []models.Point{{X: 1, Y: 3}, {X: 2, Y: 5}, {X: 3, Y: 7}}}
	fit, ok := FitLine(s)
	require.True(t, ok)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Correlation, 1e-9)

	_, ok = FitLine(models.ScatterSeries{Points: []models.Point{{X: 1, Y: 1}}})
	assert.False(t, ok)
	_, ok = FitLine(models.ScatterSeries{Points: []models.Point{{X: 1, Y: 1}, {X: 1, Y: 2}}})
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	res := Build(salesTable(), models.AxisSelection{XColumn: "City", YColumn: "Sales", ChartKind: models.ChartBar})
	d := Describe(res)
	require.NotNil(t, d.Summary)
	assert.Nil(t, d.Fit)
	assert.Equal(t, 2, d.Summary.Count)
}
