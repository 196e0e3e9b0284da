package parser

import (
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
)

// buildTable splits a cropped grid into headers and body rows and applies
// the minimum row length filter.
func buildTable(grid [][]models.Cell, opts sheetchart.Options) (models.Table, error) {
	if len(grid) == 0 {
		return models.Table{}, nil
	}

	headerRow := grid[0]
	headers := make([]string, len(headerRow))
	for i, cell := range headerRow {
		headers[i] = cell.String()
	}

	if opts.RejectDuplicateHeaders {
		if dup, ok := firstDuplicate(headers); ok {
			return models.Table{}, sheetchart.FormatErrorf("duplicate header %q", dup)
		}
	}

	floor := opts.RowLengthFloor()
	rows := make([][]models.Cell, 0, len(grid)-1)
	for _, row := range grid[1:] {
		if len(row) < floor {
			continue
		}
		rows = append(rows, row)
	}

	return models.Table{Headers: headers, Rows: rows}, nil
}

// firstDuplicate returns the first non-empty header that appears twice.
func firstDuplicate(headers []string) (string, bool) {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		if seen[h] {
			return h, true
		}
		seen[h] = true
	}
	return "", false
}
