package series

import (
	"fmt"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
)

// Result is the chart-ready projection of a table. Exactly one of Series and
// Scatter is set, depending on Kind.
type Result struct {
	Kind      models.ChartKind      `json:"kind"`
	Selection models.AxisSelection  `json:"selection"`
	Series    *models.Series        `json:"series,omitempty"`
	Scatter   *models.ScatterSeries `json:"scatter,omitempty"`
	// Missing lists selected columns that are not headers of the table.
	Missing []string `json:"missing,omitempty"`
}

// Len returns the number of emitted pairs or points.
func (r Result) Len() int {
	if r.Scatter != nil {
		return r.Scatter.Len()
	}
	if r.Series != nil {
		return r.Series.Len()
	}
	return 0
}

// Empty reports whether there is nothing to plot.
func (r Result) Empty() bool {
	return r.Len() == 0
}

// Label is the dataset caption shown in chart legends.
func (r Result) Label() string {
	return fmt.Sprintf("%s vs %s", r.Selection.YColumn, r.Selection.XColumn)
}

// Build derives the series for sel from table. Rows are kept in table order.
// A selection naming an unknown column yields an empty result, never an error.
func Build(table models.Table, sel models.AxisSelection) Result {
	res := Result{Kind: sel.ChartKind, Selection: sel}
	if res.Kind == "" {
		res.Kind = models.ChartBar
	}

	xIdx := table.ColumnIndex(sel.XColumn)
	yIdx := table.ColumnIndex(sel.YColumn)
	if xIdx < 0 {
		res.Missing = append(res.Missing, sel.XColumn)
	}
	if yIdx < 0 {
		res.Missing = append(res.Missing, sel.YColumn)
	}

	if res.Kind.IsScatter() {
		scatter := &models.ScatterSeries{Points: []models.Point{}}
		if len(res.Missing) == 0 {
			scatter.Points = buildPoints(table, xIdx, yIdx)
		}
		res.Scatter = scatter
		return res
	}

	s := &models.Series{Labels: []models.Cell{}, Values: []float64{}}
	if len(res.Missing) == 0 {
		s.Labels, s.Values = buildPairs(table, xIdx, yIdx)
	}
	res.Series = s
	return res
}

func buildPairs(table models.Table, xIdx, yIdx int) ([]models.Cell, []float64) {
	labels := make([]models.Cell, 0, len(table.Rows))
	values := make([]float64, 0, len(table.Rows))
	for _, row := range table.Rows {
		if xIdx >= len(row) || row[xIdx].IsBlank() {
			continue
		}
		if yIdx >= len(row) {
			continue
		}
		v, ok := Coerce(row[yIdx])
		if !ok {
			continue
		}
		labels = append(labels, row[xIdx])
		values = append(values, v)
	}
	return labels, values
}

func buildPoints(table models.Table, xIdx, yIdx int) []models.Point {
	points := make([]models.Point, 0, len(table.Rows))
	for _, row := range table.Rows {
		if xIdx >= len(row) || yIdx >= len(row) {
			continue
		}
		x, ok := Coerce(row[xIdx])
		if !ok {
			continue
		}
		y, ok := Coerce(row[yIdx])
		if !ok {
			continue
		}
		points = append(points, models.Point{X: x, Y: y})
	}
	return points
}
