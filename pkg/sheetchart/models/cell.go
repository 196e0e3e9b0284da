// Package models defines data structures for spreadsheet charting.
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	// CellBlank is an empty or missing cell.
	CellBlank CellKind = iota
	// CellText is a string cell.
	CellText
	// CellNumber is a numeric cell.
	CellNumber
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	default:
		return "blank"
	}
}

// Cell is a single spreadsheet value.
type Cell struct {
	// Kind selects which of Text or Number is meaningful.
	Kind CellKind
	// Text is the string value of a text cell.
	Text string
	// Number is the value of a numeric cell.
	Number float64
}

// Blank returns an empty cell.
func Blank() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// IsBlank reports whether the cell holds no value.
func (c Cell) IsBlank() bool { return c.Kind == CellBlank }

// String renders the cell the way a spreadsheet shows its raw value.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON keeps the native type: numbers stay numbers, text stays text.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.Number)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number, string or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Blank()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Number(f)
	return nil
}
