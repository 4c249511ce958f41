package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
)

const (
	sheetName = "Extracted Data"
	// maxCellChars is the spreadsheet limit for one cell.
	maxCellChars = 32767
)

// WriteXLSX renders the report as a single-sheet workbook held in memory.
func WriteXLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]any, 0, len(r.columns))
	for _, c := range r.columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i := range r.rows {
		vals := r.Values(i)
		cells := make([]any, len(vals))
		for c, v := range vals {
			cells[c] = clip(v, maxCellChars)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	// Filename narrow, answers wide.
	if len(r.columns) > 0 {
		_ = f.SetColWidth(sheetName, "A", "A", 28)
	}
	if len(r.columns) > 1 {
		last, _ := excelize.ColumnNumberToName(len(r.columns))
		_ = f.SetColWidth(sheetName, "B", last, 60)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadXLSX parses a workbook produced by WriteXLSX back into a report. The first sheet's first
// row is the header.
func ReadXLSX(b []byte) (*Report, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 || rows[0][0] != constants.FilenameColumn {
		return nil, fmt.Errorf("xlsx: first header cell must be %q", constants.FilenameColumn)
	}

	header := rows[0]
	r := NewReport(header[1:]...)
	for _, cells := range rows[1:] {
		// trailing empty cells are not returned
		padded := make([]string, len(header))
		copy(padded, cells)
		r.Add(padded[0], header[1:], padded[1:])
	}
	return r, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
