package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// DATEV EXTF batch framing constants.
const (
	formatIdentifier = "EXTF"
	formatVersion    = 700
	// Category 21: Buchungsstapel.
	formatCategory     = 21
	formatCategoryName = "Buchungsstapel"
	stapelVersion      = 13
)

const columnCount = 20

// columnHeader names the fixed posting-row columns.
var columnHeader = []string{
	"Umsatz",
	"Soll-Haben-Kennzeichen",
	"WKZ Umsatz",
	"Konto",
	"Gegenkonto",
	"BU-Schluessel",
	"Belegdatum",
	"Belegfeld 1",
	"Buchungstext",
	"Belegfeld 2",
	"Skonto",
	"Kurs",
	"Basis-Umsatz",
	"WKZ Basis-Umsatz",
	"KOST1",
	"KOST2",
	"KOST-Menge",
	"EU-Land u. UStID",
	"EU-Steuersatz",
	"Festschreibung",
}

// ExportConfig carries the batch-level metadata written into the header
// line.
type ExportConfig struct {
	Chart            Chart
	ConsultantNumber int
	ClientNumber     int
	// FiscalYearStart is the first day of the client's fiscal year.
	FiscalYearStart time.Time
	// DebtorAccount overrides DefaultDebtorAccount when set.
	DebtorAccount string
}

func (c ExportConfig) validate() error {
	switch c.Chart {
	case ChartSKR03, ChartSKR04:
	default:
		return model.ErrInvalidExportInput(fmt.Sprintf("unknown chart of accounts %q", c.Chart))
	}
	if c.ConsultantNumber <= 0 {
		return model.ErrInvalidExportInput("consultant number must be positive")
	}
	if c.ClientNumber <= 0 {
		return model.ErrInvalidExportInput("client number must be positive")
	}
	if c.FiscalYearStart.IsZero() {
		return model.ErrInvalidExportInput("fiscal year start is required")
	}
	return nil
}

// EncodeDATEV renders the valid invoices as a complete EXTF batch: BOM,
// header line, column-header row and one posting row per booking. An empty
// invoice set yields a well-formed file with only the two header lines.
func EncodeDATEV(cfg ExportConfig, inputs []Input) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	bookings := BuildBookings(cfg.Chart, cfg.DebtorAccount, inputs)

	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(headerLine(cfg, time.Now()))
	b.WriteString("\r\n")
	b.WriteString(strings.Join(columnHeader, ";"))
	b.WriteString("\r\n")

	for _, booking := range bookings {
		b.WriteString(strings.Join(bookingRow(booking), ";"))
		b.WriteString("\r\n")
	}

	return []byte(b.String()), nil
}

// headerLine renders the single non-tabular metadata line.
func headerLine(cfg ExportConfig, now time.Time) string {
	fields := []string{
		quote(formatIdentifier),
		itoa(formatVersion),
		itoa(formatCategory),
		quote(formatCategoryName),
		itoa(stapelVersion),
		now.Format("20060102150405000"),
		"", // imported-at, filled by the consuming system
		"", // origin
		"", // exported-by
		"", // imported-by
		itoa(cfg.ConsultantNumber),
		itoa(cfg.ClientNumber),
		cfg.FiscalYearStart.Format("20060102"),
		cfg.Chart.ID(),
	}
	return strings.Join(fields, ";")
}

// bookingRow serializes one posting into the fixed 20-column layout.
// Trailing columns stay blank unless populated.
func bookingRow(bk Booking) []string {
	row := make([]string, columnCount)
	row[0] = commaDecimal(bk.Amount)
	row[1] = quote(bk.DebitCredit)
	row[2] = quote(bk.Currency)
	row[3] = bk.Account
	row[4] = bk.ContraAccount
	row[5] = quote(bk.TaxCode)
	row[6] = bk.DocumentDate.Format("0201")
	row[7] = quote(bk.DocumentNumber)
	row[8] = quote(bk.Description)
	return row
}

// commaDecimal renders an amount with two fractional digits and a comma
// separator, as the consuming system requires.
func commaDecimal(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
