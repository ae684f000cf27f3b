// Package sheet serializes the visitor log to and from xlsx workbooks in a
// fixed column layout.
package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"visitor-management-backend/internal/model"
	"visitor-management-backend/internal/visitor"
)

// SheetName is the worksheet holding the visitor rows.
const SheetName = "Visitors"

// Headers is the fixed export column order. Import reads the first eight
// data columns by position; a trailing Duration column is ignored.
var Headers = []string{
	"Card No", "Name", "Phone", "Company", "To Meet",
	"Purpose", "In Time", "Out Time", "Duration",
}

var (
	// ErrNoData is surfaced when an export is requested on an empty subset.
	ErrNoData = errors.New("no visitor data to export")
	// ErrInvalidFile is surfaced when an import file has no header row or
	// no data rows, or is not a readable workbook.
	ErrInvalidFile = errors.New("invalid or empty spreadsheet")
)

// Export writes the given visitors as an xlsx workbook. The Duration column
// is computed at export time, never stored.
func Export(visitors []model.Visitor) ([]byte, error) {
	if len(visitors) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, v := range visitors {
		row := []any{
			v.CardNo,
			v.Name,
			v.Phone,
			v.CompanyName,
			v.ToMeet,
			v.Purpose,
			v.InTime,
			v.OutTime,
			visitor.ShortDuration(v.InTime, v.OutTime),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Import parses an xlsx workbook back into visitor rows. The first row is
// discarded as the header; each remaining row maps positionally to the
// eight data columns. Ids are left empty for the caller to assign.
func Import(data []byte) ([]model.Visitor, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidFile)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: missing header or data rows", ErrInvalidFile)
	}

	visitors := make([]model.Visitor, 0, len(rows)-1)
	for _, row := range rows[1:] {
		visitors = append(visitors, model.Visitor{
			CardNo:      cellValue(row, 0),
			Name:        cellValue(row, 1),
			Phone:       cellValue(row, 2),
			CompanyName: cellValue(row, 3),
			ToMeet:      cellValue(row, 4),
			Purpose:     cellValue(row, 5),
			InTime:      cellValue(row, 6),
			OutTime:     cellValue(row, 7),
		})
	}
	return visitors, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
