package parser

import (
	"errors"
	"testing"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/xuri/excelize/v2"
)

func TestParse(t *testing.T) {
	data := workbookBytes(t, "A1", [][]interface{}{
		{"City", "Sales"},
		{"A", 10},
		{"B", "x"},
		{"C", 30.5},
		{"D"},
		{"E", nil, 5},
	})

	table, err := Parse(data, sheetchart.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Headers) != 2 || table.Headers[0] != "City" || table.Headers[1] != "Sales" {
		t.Fatalf("Unexpected headers %v", table.Headers)
	}

	// Row "D" is shorter than two cells and must be dropped.
	if len(table.Rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(table.Rows))
	}
	for i, row := range table.Rows {
		if len(row) < 2 {
			t.Errorf("Row %d has length %d", i, len(row))
		}
	}

	if table.Rows[0][1] != models.Number(10) {
		t.Errorf("Expected number 10, got %+v", table.Rows[0][1])
	}
	if table.Rows[1][1] != models.Text("x") {
		t.Errorf("Expected text x, got %+v", table.Rows[1][1])
	}
	if table.Rows[2][1] != models.Number(30.5) {
		t.Errorf("Expected number 30.5, got %+v", table.Rows[2][1])
	}

	// Ragged row keeps its hole.
	last := table.Rows[3]
	if len(last) != 3 || !last[1].IsBlank() || last[2] != models.Number(5) {
		t.Errorf("Unexpected ragged row %+v", last)
	}
}

func TestParseUsesFirstSheetByOrder(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Zeta"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Alpha"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Zeta", "A1", "First")
	f.SetCellValue("Zeta", "B1", "Value")
	f.SetCellValue("Alpha", "A1", "Second")
	f.SetCellValue("Alpha", "B1", "Other")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	table, err := Parse(buf.Bytes(), sheetchart.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Headers[0] != "First" {
		t.Errorf("Expected headers from sheet Zeta, got %v", table.Headers)
	}
}

func TestParseCropsToUsedRange(t *testing.T) {
	data := workbookBytes(t, "C3", [][]interface{}{
		{"Month", "Rain"},
		{"Jan", 12},
	})

	table, err := Parse(data, sheetchart.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Headers) != 2 || table.Headers[0] != "Month" {
		t.Fatalf("Unexpected headers %v", table.Headers)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != models.Text("Jan") {
		t.Errorf("Unexpected rows %+v", table.Rows)
	}
}

func TestParseEmptySheet(t *testing.T) {
	data := workbookBytes(t, "A1", nil)

	table, err := Parse(data, sheetchart.DefaultOptions())
	if err != nil {
		t.Fatalf("Expected empty table, got error %v", err)
	}
	if !table.IsEmpty() || len(table.Rows) != 0 {
		t.Errorf("Expected empty table, got %+v", table)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := [][]byte{
		nil,
		[]byte("definitely not a workbook"),
		[]byte("PK\x03\x04broken zip"),
	}

	for _, data := range tests {
		_, err := Parse(data, sheetchart.DefaultOptions())
		if !errors.Is(err, sheetchart.ErrFormat) {
			t.Errorf("Parse(%q) error = %v, expected ErrFormat", data, err)
		}
	}
}

func TestParseDuplicateHeaders(t *testing.T) {
	data := workbookBytes(t, "A1", [][]interface{}{
		{"Name", "Score", "Score"},
		{"a", 1, 2},
	})

	table, err := Parse(data, sheetchart.DefaultOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.ColumnIndex("Score") != 1 {
		t.Errorf("Expected first match to win, got index %d", table.ColumnIndex("Score"))
	}

	opts := sheetchart.Options{RejectDuplicateHeaders: true}
	if _, err := Parse(data, opts); !errors.Is(err, sheetchart.ErrFormat) {
		t.Errorf("Expected ErrFormat for duplicate headers, got %v", err)
	}
}

func TestParseMinRowLengthOverride(t *testing.T) {
	data := workbookBytes(t, "A1", [][]interface{}{
		{"Name", "Score"},
		{"solo"},
	})

	one := 1
	table, err := Parse(data, sheetchart.Options{MinRowLength: &one})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("Expected the short row to be kept, got %d rows", len(table.Rows))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"report.xlsx", nil, FormatXLSX},
		{"REPORT.CSV", nil, FormatCSV},
		{"legacy.xls", nil, FormatXLSX},
		{"upload", []byte("a,b,c\n1,2,3\n4,5,6\n"), FormatCSV},
	}

	for _, tt := range tests {
		result := DetectFormat(tt.name, tt.data)
		if result != tt.expected {
			t.Errorf("DetectFormat(%q) = %q, expected %q", tt.name, result, tt.expected)
		}
	}
}

func TestContentType(t *testing.T) {
	if ContentType("a.csv") != MIMECSV {
		t.Errorf("Expected csv content type")
	}
	if ContentType("a.xlsx") != MIMEXLSX {
		t.Errorf("Expected xlsx content type")
	}
}
