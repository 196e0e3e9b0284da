package models

// Table is the parsed content of the first sheet of a workbook.
type Table struct {
	// Headers is the first row of the sheet. Column identity is by header text.
	Headers []string `json:"headers"`
	// Rows are the body rows in sheet order. Rows may be ragged.
	Rows [][]Cell `json:"rows"`
}

// IsEmpty reports whether the table has no header row.
func (t Table) IsEmpty() bool {
	return len(t.Headers) == 0
}

// ColumnIndex returns the position of the first header equal to name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// CellAt returns the cell at row r, column c. Missing cells are blank.
func (t Table) CellAt(r, c int) Cell {
	if r < 0 || r >= len(t.Rows) {
		return Blank()
	}
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return Blank()
	}
	return row[c]
}
