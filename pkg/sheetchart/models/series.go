package models

// Series is the (label, value) form used by bar, pie, line and doughnut charts.
type Series struct {
	// Labels are the x cells, kept in their native type.
	Labels []Cell `json:"labels"`
	// Values are the coerced y values. len(Values) == len(Labels).
	Values []float64 `json:"values"`
}

// Len returns the number of pairs.
func (s Series) Len() int { return len(s.Values) }

// Point is one scatter point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterSeries is the numeric (x, y) form used by scatter charts.
type ScatterSeries struct {
	// Points are emitted in row order.
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s ScatterSeries) Len() int { return len(s.Points) }

// XValues returns the x coordinates.
func (s ScatterSeries) XValues() []float64 {
	xs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
	}
	return xs
}

// YValues returns the y coordinates.
func (s ScatterSeries) YValues() []float64 {
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		ys[i] = p.Y
	}
	return ys
}
