// Package parser converts workbook bytes into a models.Table.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/xuri/excelize/v2"
)

// readTypedRows reads every row of a sheet as typed cells.
// Raw (unformatted) values are used so dates and percentages stay numeric.
func readTypedRows(f *excelize.File, sheetName string) ([][]models.Cell, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	result := make([][]models.Cell, len(rows))
	for rowIdx, row := range rows {
		cells := make([]models.Cell, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheetName, cellName)
			if err != nil {
				return nil, err
			}
			cells[colIdx] = typedCell(cellType, raw)
		}
		result[rowIdx] = trimTrailingBlanks(cells)
	}

	return result, nil
}

// typedCell maps an excelize cell type and raw value to a Cell.
func typedCell(cellType excelize.CellType, raw string) models.Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError, excelize.CellTypeDate:
		return models.Text(raw)
	case excelize.CellTypeBool:
		switch raw {
		case "1":
			return models.Text("TRUE")
		case "0":
			return models.Text("FALSE")
		}
		return models.Text(raw)
	default:
		return parseValue(raw)
	}
}

// parseValue attempts to parse a raw value as a number.
// Returns a number cell for numeric input, a text cell otherwise,
// and a blank cell for the empty string.
func parseValue(s string) models.Cell {
	if s == "" {
		return models.Blank()
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.Number(f)
	}
	return models.Text(s)
}

// trimTrailingBlanks drops blank cells after the last non-blank one.
func trimTrailingBlanks(cells []models.Cell) []models.Cell {
	end := len(cells)
	for end > 0 && cells[end-1].IsBlank() {
		end--
	}
	return cells[:end]
}
