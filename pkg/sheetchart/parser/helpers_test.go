package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an in-memory xlsx with the given rows written to the
// default sheet starting at origin (e.g. "A1").
func workbookBytes(t *testing.T, origin string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	col, row, err := excelize.CellNameToCoordinates(origin)
	if err != nil {
		t.Fatalf("bad origin %q: %v", origin, err)
	}
	for r, values := range rows {
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+c, row+r)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("SetCellValue(%s): %v", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}
