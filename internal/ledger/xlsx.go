package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rechnungswerk/einvoice/internal/model"
)

const reviewSheet = "Buchungen"

// WriteReviewWorkbook renders the bookings of the valid invoices as an XLSX
// workbook for manual review before the DATEV import.
func WriteReviewWorkbook(chart Chart, debtorAccount string, inputs []Input) ([]byte, error) {
	bookings := BuildBookings(chart, debtorAccount, inputs)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), reviewSheet)

	headers := []string{
		"Belegdatum", "Belegnummer", "Buchungstext", "Betrag", "Waehrung",
		"Konto", "Gegenkonto", "Steuerschluessel",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, model.ErrGeneration("workbook layout failed", err)
		}
		if err := f.SetCellValue(reviewSheet, cell, h); err != nil {
			return nil, model.ErrGeneration("workbook header failed", err)
		}
	}

	total := decimal.Zero
	for row, bk := range bookings {
		values := []any{
			bk.DocumentDate.Format("02.01.2006"),
			bk.DocumentNumber,
			bk.Description,
			bk.Amount.StringFixed(2),
			bk.Currency,
			bk.Account,
			bk.ContraAccount,
			bk.TaxCode,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, model.ErrGeneration("workbook layout failed", err)
			}
			if err := f.SetCellValue(reviewSheet, cell, v); err != nil {
				return nil, model.ErrGeneration("workbook row failed", err)
			}
		}
		total = total.Add(bk.Amount)
	}

	sumRow := len(bookings) + 3
	if err := f.SetCellValue(reviewSheet, fmt.Sprintf("C%d", sumRow), "Summe netto"); err != nil {
		return nil, model.ErrGeneration("workbook summary failed", err)
	}
	if err := f.SetCellValue(reviewSheet, fmt.Sprintf("D%d", sumRow), total.StringFixed(2)); err != nil {
		return nil, model.ErrGeneration("workbook summary failed", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, model.ErrGeneration("workbook serialization failed", err)
	}
	return buf.Bytes(), nil
}
