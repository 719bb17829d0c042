// =============================================================================
// OBX Importer - XLSX Export
// =============================================================================
//
// This module renders a quotation's line items as a spreadsheet so the
// result can be reviewed and edited before it is submitted.
//
// SHEET LAYOUT ("Angebot"):
//
//   | Row | Content                                                        |
//   |-----|----------------------------------------------------------------|
//   | 1   | Title                                                          |
//   | 2   | Voucher date, expiration date                                  |
//   | 3   | Recipient                                                      |
//   | 5   | Column headers                                                 |
//   | 6.. | One row per line item; text items leave the price columns empty|
//   | n   | Net total over all priced items                                |
//
// =============================================================================

package xlsxexport

import (
	"fmt"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only worksheet.
const SheetName = "Angebot"

// headerRow is the row holding the column headers.
const headerRow = 5

// Columns of the line item table.
var columns = []struct {
	title string
	width float64
}{
	{"Pos.", 6},
	{"Typ", 8},
	{"Bezeichnung", 45},
	{"Beschreibung", 70},
	{"Menge", 8},
	{"Einheit", 8},
	{"Einzelpreis", 14},
	{"Gesamt", 14},
}

// Write renders q into a new workbook at path.
//
// PARAMETERS:
//   - q: The quotation to render.
//   - path: The destination file, overwritten if present.
//
// RETURNS:
//   - An error if a cell cannot be written or the file cannot be saved.
func Write(q *types.Quotation, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	w := &sheetWriter{f: f}
	if err := w.styles(); err != nil {
		return err
	}

	w.set("A1", "Angebot")
	w.set("A2", "Datum")
	w.set("B2", q.VoucherDate)
	w.set("C2", "Gültig bis "+q.ExpirationDate)
	w.set("A3", "Empfänger")
	w.set("B3", recipient(q.Address))
	w.style("A1", "A1", w.bold)

	for i, col := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		w.set(cell(i+1, headerRow), col.title)
		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	w.style(cell(1, headerRow), cell(len(columns), headerRow), w.bold)

	row := headerRow + 1
	pos := 0
	for _, item := range q.LineItems {
		w.set(cell(2, row), string(item.Kind))
		w.set(cell(3, row), item.Name)
		w.set(cell(4, row), item.Description)
		w.style(cell(4, row), cell(4, row), w.wrap)

		if item.IsCustom() {
			pos++
			w.set(cell(1, row), pos)
			w.set(cell(5, row), item.Quantity)
			w.set(cell(6, row), item.UnitName)
			w.set(cell(7, row), item.UnitPrice.NetAmount)
			w.set(cell(8, row), item.NetTotal())
			w.style(cell(7, row), cell(8, row), w.money)
		}
		row++
	}

	w.set(cell(7, row), "Nettosumme")
	w.set(cell(8, row), netTotal(q))
	w.style(cell(7, row), cell(7, row), w.bold)
	w.style(cell(8, row), cell(8, row), w.boldMoney)

	if w.err != nil {
		return fmt.Errorf("failed to write sheet: %w", w.err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error of a series of cell writes.
type sheetWriter struct {
	f   *excelize.File
	err error

	bold, money, boldMoney, wrap int
}

func (w *sheetWriter) styles() error {
	// Format 4 is the built-in "#,##0.00".
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&w.money, &excelize.Style{NumFmt: 4}},
		{&w.boldMoney, &excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}}},
		{&w.wrap, &excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}},
	}
	for _, d := range defs {
		id, err := w.f.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

func (w *sheetWriter) set(axis string, value interface{}) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(SheetName, axis, value)
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(SheetName, from, to, id)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func recipient(a types.Address) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ContactID
}

func netTotal(q *types.Quotation) float64 {
	var total float64
	for _, item := range q.CustomItems() {
		total += item.NetTotal()
	}
	return total
}
