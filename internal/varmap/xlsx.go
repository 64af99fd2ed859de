// =============================================================================
// fixtable - XLSX Variable Mapping
// =============================================================================
//
// Many research groups keep their variable dictionary in a spreadsheet. The
// workbook layout is:
//
//   | Column A    | Column B      |
//   |-------------|---------------|
//   | source      | label         |   <- optional header row
//   | log_assets  | Log(Assets)   |
//   | roa         | ROA           |
//
// Only the first sheet is read. Rows with an empty source cell are skipped.
//
// =============================================================================

package varmap

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column positions in the mapping sheet (0-indexed).
const (
	sourceColumn = 0
	labelColumn  = 1
)

// LoadXLSX reads a mapping from the first sheet of an XLSX workbook.
//
// PARAMETERS:
//   - path: The workbook path.
//
// RETURNS:
//   - The mapping in row order.
//   - An error if the workbook cannot be opened or has no sheets.
func LoadXLSX(path string) (Mapping, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open varfile workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("varfile workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var mapping Mapping
	for i, row := range rows {
		source := getCell(row, sourceColumn)
		if source == "" {
			continue
		}
		if i == 0 && isHeaderCell(source) {
			continue
		}
		mapping = append(mapping, NewEntry(source, getCell(row, labelColumn)))
	}

	return mapping, nil
}

// getCell safely returns a trimmed cell value.
func getCell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

func isHeaderCell(value string) bool {
	switch strings.ToLower(value) {
	case "source", "variable", "varname":
		return true
	}
	return false
}
