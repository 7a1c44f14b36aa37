// Package export writes tables as downloadable CSV and XLSX files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"dmsreport/internal/table"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no data to export")

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Sheet is the worksheet XLSX exports are written to.
const Sheet = "Sheet1"

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// FileName returns "<base>_data.<format>", e.g. documents_data.csv.
func FileName(base, format string) string {
	return base + "_data." + format
}

// Write encodes t in format to w.
func Write(w io.Writer, t *table.Table, format string) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header row and one record per row. Nulls are empty fields and
// timestamps use "2006-01-02 15:04:05".
func WriteCSV(w io.Writer, t *table.Table) error {
	if t.Empty() {
		return ErrEmpty
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.Columns()))
	var werr error
	t.Each(func(row table.Row) {
		if werr != nil {
			return
		}
		for i, v := range row.Values() {
			record[i] = table.FormatValue(v)
		}
		werr = cw.Write(record)
	})
	if werr != nil {
		return fmt.Errorf("write csv row: %w", werr)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the same content as WriteCSV to Sheet of a new workbook.
// Numbers and booleans keep their cell type.
func WriteXLSX(w io.Writer, t *table.Table) error {
	if t.Empty() {
		return ErrEmpty
	}
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	var werr error
	t.Each(func(row table.Row) {
		if werr != nil {
			return
		}
		values := row.Values()
		for i, v := range values {
			values[i] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, row.Index()+2)
		if err != nil {
			werr = err
			return
		}
		werr = f.SetSheetRow(Sheet, cell, &values)
	})
	if werr != nil {
		return fmt.Errorf("write xlsx row: %w", werr)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return table.FormatValue(x)
	default:
		return x
	}
}
