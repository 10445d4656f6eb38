package records

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a workbook whose first row is the header. An empty sheet
// name selects the first sheet. Rows shorter than the header are padded with
// empty strings; blank rows are skipped.
func ReadXLSX(r io.Reader, sheet, name string) (*Schema, []Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("read sheet %q: no header row", sheet)
	}

	schema, err := NewSchema(name, rows[0])
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx header: %w", err)
	}

	out := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > schema.Len() {
			return nil, nil, fmt.Errorf("%w: sheet %q row %d has %d cells, header has %d",
				ErrFieldCount, sheet, i+2, len(row), schema.Len())
		}
		for len(row) < schema.Len() {
			row = append(row, "")
		}
		rec, err := schema.New(row...)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, rec)
	}
	return schema, out, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
