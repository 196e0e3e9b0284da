package parser

import (
	"testing"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/xuri/excelize/v2"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Cell
	}{
		{"123", models.Number(123)},
		{"123.45", models.Number(123.45)},
		{"-100", models.Number(-100)},
		{" 7 ", models.Number(7)},
		{"hello", models.Text("hello")},
		{"NaN", models.Text("NaN")},
		{"Inf", models.Text("Inf")},
		{"", models.Blank()},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %+v, expected %+v", tt.input, result, tt.expected)
		}
	}
}

func TestTypedCell(t *testing.T) {
	tests := []struct {
		cellType excelize.CellType
		raw      string
		expected models.Cell
	}{
		{excelize.CellTypeUnset, "10", models.Number(10)},
		{excelize.CellTypeNumber, "2.5", models.Number(2.5)},
		{excelize.CellTypeSharedString, "10", models.Text("10")},
		{excelize.CellTypeInlineString, "x", models.Text("x")},
		{excelize.CellTypeBool, "1", models.Text("TRUE")},
		{excelize.CellTypeBool, "0", models.Text("FALSE")},
		{excelize.CellTypeError, "#DIV/0!", models.Text("#DIV/0!")},
	}

	for _, tt := range tests {
		result := typedCell(tt.cellType, tt.raw)
		if result != tt.expected {
			t.Errorf("typedCell(%v, %q) = %+v, expected %+v", tt.cellType, tt.raw, result, tt.expected)
		}
	}
}

func TestTrimTrailingBlanks(t *testing.T) {
	cells := []models.Cell{models.Text("a"), models.Blank(), models.Number(1), models.Blank(), models.Blank()}
	got := trimTrailingBlanks(cells)
	if len(got) != 3 {
		t.Fatalf("Expected 3 cells, got %d", len(got))
	}
	if len(trimTrailingBlanks([]models.Cell{models.Blank()})) != 0 {
		t.Errorf("Expected all-blank row to trim to nothing")
	}
}

func TestFindDataBounds(t *testing.T) {
	rows := [][]models.Cell{
		{},
		{models.Blank(), models.Blank(), models.Text("h1"), models.Text("h2")},
		{models.Blank(), models.Text("x")},
	}
	minRow, minCol, ok := findDataBounds(rows)
	if !ok || minRow != 1 || minCol != 1 {
		t.Errorf("findDataBounds = (%d, %d, %v), expected (1, 1, true)", minRow, minCol, ok)
	}

	if _, _, ok := findDataBounds([][]models.Cell{{}, {models.Blank()}}); ok {
		t.Errorf("Expected no bounds for an empty grid")
	}
}
