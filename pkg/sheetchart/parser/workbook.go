package parser

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/xuri/excelize/v2"
)

// MIME types the parser distinguishes.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"
	MIMEOLE  = "application/x-ole-storage"
	MIMECSV  = "text/csv"
)

// Parse reads an xlsx workbook and returns the table held by its first sheet
// in workbook order. An empty first sheet yields an empty table.
func Parse(data []byte, opts sheetchart.Options) (models.Table, error) {
	if isLegacyWorkbook(data) {
		return models.Table{}, sheetchart.FormatErrorf("legacy or encrypted workbooks are not supported")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return models.Table{}, sheetchart.FormatErrorf("open workbook: %v", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return models.Table{}, sheetchart.FormatErrorf("workbook has no sheets")
	}

	rows, err := readTypedRows(f, sheetList[0])
	if err != nil {
		return models.Table{}, sheetchart.FormatErrorf("read sheet %q: %v", sheetList[0], err)
	}

	return buildTable(cropToData(rows), opts)
}

// ParseFile parses data using the file name and sniffed content type to pick
// between the workbook and CSV readers.
func ParseFile(name string, data []byte, opts sheetchart.Options) (models.Table, error) {
	switch DetectFormat(name, data) {
	case FormatCSV:
		return ParseCSV(data, opts)
	default:
		return Parse(data, opts)
	}
}

// Format is the reader chosen for an upload.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat decides how an upload should be read.
func DetectFormat(name string, data []byte) Format {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		return FormatCSV
	}
	if ext == ".xlsx" || ext == ".xlsm" || ext == ".xls" {
		return FormatXLSX
	}
	if mimetype.Detect(data).Is(MIMECSV) {
		return FormatCSV
	}
	return FormatXLSX
}

// ContentType returns the MIME type used when handing the original file back.
func ContentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return MIMECSV
	}
	return MIMEXLSX
}

func isLegacyWorkbook(data []byte) bool {
	m := mimetype.Detect(data)
	return m.Is(MIMEXLS) || m.Is(MIMEOLE)
}
