package parser

import (
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// ParseCSV reads a comma separated file as a single-sheet table.
// Input that is not valid UTF-8 is decoded as Windows-1252.
func ParseCSV(data []byte, opts sheetchart.Options) (models.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return models.Table{}, sheetchart.FormatErrorf("decode csv: %v", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]models.Cell
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Table{}, sheetchart.FormatErrorf("read csv: %v", err)
		}
		cells := make([]models.Cell, len(record))
		for i, field := range record {
			cells[i] = parseValue(field)
		}
		grid = append(grid, trimTrailingBlanks(cells))
	}

	return buildTable(cropToData(grid), opts)
}
