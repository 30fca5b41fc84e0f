package export

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
)

const defaultSheet = "Sheet1"

// Sheet is one named worksheet of a workbook.
type Sheet struct {
	Name  string
	Table *iiasa.Table
}

// WriteExcel writes the table to an .xlsx workbook at path, on a single sheet
// with a header row followed by one row per table row. An empty table still
// produces a workbook holding the header.
func WriteExcel(path string, sheet string, t *iiasa.Table) error {
	return WriteWorkbook(path, Sheet{Name: sheet, Table: t})
}

// WriteWorkbook writes each table to its own sheet of an .xlsx workbook at
// path, in the given order. An empty sheet name means "Sheet1".
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("no sheets")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if s.Table == nil {
			return fmt.Errorf("sheet %q: nil table", s.Name)
		}
		name := cmp.Or(s.Name, defaultSheet)
		if i == 0 {
			if name != defaultSheet {
				if err := f.SetSheetName(defaultSheet, name); err != nil {
					return fmt.Errorf("rename sheet: %w", err)
				}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s.Table); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	return writeFile(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

func writeSheet(f *excelize.File, sheet string, t *iiasa.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(r), len(t.Columns))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = cellValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// cellValue converts v to a type the stream writer accepts. Composite
// metadata values are written as JSON text.
func cellValue(v iiasa.Value) any {
	switch v := v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
