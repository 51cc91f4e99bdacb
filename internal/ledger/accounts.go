// Package ledger encodes validated invoices as a DATEV-style posting batch
// for import into bookkeeping software, plus an XLSX review workbook.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Chart selects one of the two supported German charts of accounts.
type Chart string

const (
	ChartSKR03 Chart = "SKR03"
	ChartSKR04 Chart = "SKR04"
)

// ID returns the numeric chart identifier used in the batch header.
func (c Chart) ID() string {
	if c == ChartSKR04 {
		return "4"
	}
	return "3"
}

// DefaultDebtorAccount is the collective debtor used when no per-customer
// account is configured.
const DefaultDebtorAccount = "10000"

// TaxCode maps an invoice tax rate to the posting tax code. The mapping is
// exact: 19 and 7 are the only coded rates, everything else posts without a
// tax code.
func TaxCode(rate decimal.Decimal) string {
	switch {
	case rate.Equal(decimal.NewFromInt(19)):
		return "9"
	case rate.Equal(decimal.NewFromInt(7)):
		return "8"
	default:
		return "0"
	}
}

// Revenue account slots per chart. Zero-rated revenue splits by delivery
// target, coded rates are always domestic accounts.
var revenueAccounts = map[Chart]map[string]string{
	ChartSKR03: {
		"19":      "8400",
		"7":       "8300",
		"0":       "8100",
		"intraEU": "8125",
		"export":  "8120",
	},
	ChartSKR04: {
		"19":      "4400",
		"7":       "4300",
		"0":       "4100",
		"intraEU": "4125",
		"export":  "4120",
	},
}

// RevenueAccount returns the revenue account for a (rate, delivery type)
// combination in the given chart.
func RevenueAccount(chart Chart, rate decimal.Decimal, delivery model.DeliveryType) string {
	accounts, ok := revenueAccounts[chart]
	if !ok {
		accounts = revenueAccounts[ChartSKR03]
	}

	switch {
	case rate.Equal(decimal.NewFromInt(19)):
		return accounts["19"]
	case rate.Equal(decimal.NewFromInt(7)):
		return accounts["7"]
	case delivery == model.DeliveryIntraEU:
		return accounts["intraEU"]
	case delivery == model.DeliveryExport:
		return accounts["export"]
	default:
		return accounts["0"]
	}
}
