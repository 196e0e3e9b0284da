package parser

import "github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"

// findDataBounds finds the top-left corner of the non-blank cells.
// ok is false when the grid holds no data at all.
func findDataBounds(rows [][]models.Cell) (minRow, minCol int, ok bool) {
	minRow, minCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell.IsBlank() {
				continue
			}
			if minRow < 0 {
				minRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
		}
	}

	return minRow, minCol, minRow >= 0
}

// cropToData returns the grid starting at its used range, so a table placed
// at C3 reads the same as one placed at A1.
func cropToData(rows [][]models.Cell) [][]models.Cell {
	minRow, minCol, ok := findDataBounds(rows)
	if !ok {
		return nil
	}

	cropped := make([][]models.Cell, 0, len(rows)-minRow)
	for _, row := range rows[minRow:] {
		if minCol >= len(row) {
			cropped = append(cropped, []models.Cell{})
			continue
		}
		cropped = append(cropped, row[minCol:])
	}
	return cropped
}
