package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
)

// ContentType is the MIME type of the files written by WriteXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column maps one entity field to a spreadsheet column.
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// WriteXLSX writes items as a single sheet with a bold header row.
func WriteXLSX[T any](w io.Writer, sheet string, columns []Column[T], items []T) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, item := range items {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = c.Value(item)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

var ProductColumns = []Column[model.Product]{
	{"ID", func(p model.Product) any { return p.ID }},
	{"Name", func(p model.Product) any { return p.Name }},
	{"Description", func(p model.Product) any { return p.Description }},
	{"Price", func(p model.Product) any { return p.Price }},
	{"Quantity", func(p model.Product) any { return p.Quantity }},
	{"Color", func(p model.Product) any { return p.Color }},
	{"Category", func(p model.Product) any { return p.Category }},
	{"Supplier", func(p model.Product) any { return p.Supplier }},
}

var CategoryColumns = []Column[model.Category]{
	{"ID", func(c model.Category) any { return c.ID }},
	{"Name", func(c model.Category) any { return c.Name }},
	{"Description", func(c model.Category) any { return c.Description }},
}

var SupplierColumns = []Column[model.Supplier]{
	{"ID", func(s model.Supplier) any { return s.ID }},
	{"Name", func(s model.Supplier) any { return s.Name }},
	{"Contact", func(s model.Supplier) any { return s.Contact }},
	{"Address", func(s model.Supplier) any { return s.Address }},
}

var ClientColumns = []Column[model.Client]{
	{"ID", func(c model.Client) any { return c.ID }},
	{"Name", func(c model.Client) any { return c.Name }},
	{"CPF", func(c model.Client) any { return c.CPF }},
	{"Address", func(c model.Client) any { return c.Address }},
	{"Phone", func(c model.Client) any { return c.Phone }},
	{"Email", func(c model.Client) any { return c.Email }},
}
