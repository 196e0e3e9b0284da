package models

import (
	"fmt"
	"strings"
)

// ChartKind is the chart type a selection is rendered as.
type ChartKind string

const (
	// ChartBar draws one bar per label. It is the default kind.
	ChartBar ChartKind = "bar"
	// ChartPie draws one slice per label.
	ChartPie ChartKind = "pie"
	// ChartLine connects the values in row order.
	ChartLine ChartKind = "line"
	// ChartDoughnut is a pie with a hollow centre.
	ChartDoughnut ChartKind = "doughnut"
	// ChartScatter plots numeric (x, y) points.
	ChartScatter ChartKind = "scatter"
)

// ChartKinds lists the supported chart kinds in menu order.
var ChartKinds = []ChartKind{ChartBar, ChartPie, ChartLine, ChartDoughnut, ChartScatter}

// ParseChartKind converts a user supplied name to a ChartKind.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown chart kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of ChartKinds.
func (k ChartKind) Valid() bool {
	for _, c := range ChartKinds {
		if c == k {
			return true
		}
	}
	return false
}

// IsScatter reports whether k plots numeric (x, y) points.
func (k ChartKind) IsScatter() bool {
	return k == ChartScatter
}

// AxisSelection picks the columns and chart kind used to build a series.
type AxisSelection struct {
	// XColumn is the header supplying labels (or x values for scatter).
	XColumn string `json:"x_column"`
	// YColumn is the header supplying values.
	YColumn string `json:"y_column"`
	// ChartKind is the chart type.
	ChartKind ChartKind `json:"chart_kind"`
}

// DefaultSelection returns the selection used right after a table is loaded:
// the first two headers as x and y, rendered as a bar chart.
func DefaultSelection(t Table) AxisSelection {
	sel := AxisSelection{ChartKind: ChartBar}
	if len(t.Headers) > 0 {
		sel.XColumn = t.Headers[0]
	}
	if len(t.Headers) > 1 {
		sel.YColumn = t.Headers[1]
	}
	return sel
}

// SelectionChange is a partial AxisSelection. Nil fields are left unchanged.
type SelectionChange struct {
	XColumn   *string    `json:"x_column,omitempty"`
	YColumn   *string    `json:"y_column,omitempty"`
	ChartKind *ChartKind `json:"chart_kind,omitempty"`
}

// Apply merges the change into sel.
func (c SelectionChange) Apply(sel AxisSelection) AxisSelection {
	if c.XColumn != nil {
		sel.XColumn = *c.XColumn
	}
	if c.YColumn != nil {
		sel.YColumn = *c.YColumn
	}
	if c.ChartKind != nil {
		sel.ChartKind = *c.ChartKind
	}
	return sel
}
