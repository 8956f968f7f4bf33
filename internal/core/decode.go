package core

// decode.go turns uploaded spreadsheets into ordered records.
//
// All three formats are reduced to a [][]string grid first; the grid is then
// converted to records the same way regardless of source:
//
//   - The first row is the header row.
//   - Duplicate headers get _1, _2 suffixes; empty headers become __EMPTY,
//     __EMPTY_1, ...
//   - Empty cells are left out of the record.
//   - Rows with no non-empty cell are skipped.
//
// CSV input has its UTF-8 BOM removed and invalid UTF-8 replaced before
// parsing, since exports from Windows tools commonly carry both.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Supported spreadsheet formats.
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
	FormatCSV  = "csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileFormat returns the lower-cased extension of fileName and whether it is
// one of the supported formats.
func FileFormat(fileName string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch ext {
	case FormatXLSX, FormatXLS, FormatCSV:
		return ext, true
	}
	return ext, false
}

// DecodeTable parses data as the given format and returns one Record per
// non-blank data row, in file order.
func DecodeTable(data []byte, format string) ([]Record, error) {
	format = strings.ToLower(format)

	var (
		grid [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		grid, err = readCSV(data)
	case FormatXLSX:
		grid, err = readXLSX(data)
	case FormatXLS:
		grid, err = readXLS(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}

	return gridToRecords(grid), nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r.ReadAll()
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	// Raw values keep number formats such as "0" or "0%" from rewriting
	// what gets stored.
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

// readXLS reads the first sheet of a BIFF workbook. The parser panics on
// some malformed inputs, so panics are reported as errors.
func readXLS(data []byte) (grid [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			grid = nil
			err = fmt.Errorf("malformed xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no readable sheet")
	}

	grid = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences missing rows, so that panic is absorbed here.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// gridToRecords converts a raw grid into records keyed by the header row.
func gridToRecords(grid [][]string) []Record {
	if len(grid) == 0 {
		return []Record{}
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	headers := headerNames(grid[0], width)

	records := make([]Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := make(Record, len(row))
		for j, cell := range row {
			if cell == "" {
				continue
			}
			rec[headers[j]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// headerNames makes width unique column names from the header row.
func headerNames(row []string, width int) []string {
	names := make([]string, width)
	taken := make(map[string]bool, width)
	seen := make(map[string]int, width)

	for j := 0; j < width; j++ {
		base := ""
		if j < len(row) {
			base = row[j]
		}
		if base == "" {
			base = "__EMPTY"
		}

		name := base
		for n := seen[base]; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
			seen[base] = n
		}
		seen[base]++
		taken[name] = true
		names[j] = name
	}
	return names
}
