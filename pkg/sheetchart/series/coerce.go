// Package series projects a parsed table onto an axis selection.
package series

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
)

// Coerce converts a cell to a finite number.
// Numeric text is accepted; blanks, other text, NaN and infinities are not.
func Coerce(c models.Cell) (float64, bool) {
	var f float64
	switch c.Kind {
	case models.CellNumber:
		f = c.Number
	case models.CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
