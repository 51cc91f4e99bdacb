package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Booking is one posting line of the export batch.
type Booking struct {
	// Amount is the posting's taxable base, always positive here.
	Amount decimal.Decimal
	// DebitCredit is "S" (Soll) or "H" (Haben).
	DebitCredit string
	Currency    string
	// Account is the debtor account.
	Account string
	// ContraAccount is the revenue account selected per rate and delivery.
	ContraAccount string
	TaxCode       string
	DocumentDate  time.Time
	// DocumentNumber is shared by every posting split off one invoice.
	DocumentNumber string
	Description    string
}

// Input pairs an invoice with its validation verdict. Only valid invoices
// are exported.
type Input struct {
	Invoice model.Invoice
	Valid   bool
}

const (
	maxDocumentNumberLen = 36
	maxDescriptionLen    = 60
)

// BuildBookings decomposes the valid invoices into postings, one per
// distinct tax rate per invoice. Invalid invoices contribute nothing.
func BuildBookings(chart Chart, debtorAccount string, inputs []Input) []Booking {
	if debtorAccount == "" {
		debtorAccount = DefaultDebtorAccount
	}

	var bookings []Booking
	for _, in := range inputs {
		if !in.Valid {
			continue
		}
		bookings = append(bookings, invoiceBookings(chart, debtorAccount, in.Invoice)...)
	}
	return bookings
}

func invoiceBookings(chart Chart, debtorAccount string, inv model.Invoice) []Booking {
	inv.CalculateTotals()
	delivery := inv.ResolveDeliveryType()

	bases := rateBases(&inv)
	bookings := make([]Booking, 0, len(bases))
	for _, rb := range bases {
		bookings = append(bookings, Booking{
			Amount:         rb.base,
			DebitCredit:    "S",
			Currency:       inv.CurrencyOrDefault(),
			Account:        debtorAccount,
			ContraAccount:  RevenueAccount(chart, rb.rate, delivery),
			TaxCode:        TaxCode(rb.rate),
			DocumentDate:   inv.IssueDate,
			DocumentNumber: truncate(inv.Number, maxDocumentNumberLen),
			Description:    truncate(bookingText(inv), maxDescriptionLen),
		})
	}
	return bookings
}

type rateBase struct {
	rate decimal.Decimal
	base decimal.Decimal
}

// rateBases returns the net base per distinct tax rate, in first-seen order.
// Subtotals of the same rate but different category collapse into one base.
func rateBases(inv *model.Invoice) []rateBase {
	if len(inv.TaxBreakdown) == 0 {
		return []rateBase{{rate: inv.DistinctTaxRates()[0], base: inv.NetAmount}}
	}

	idx := make(map[string]int)
	var out []rateBase
	for _, sub := range inv.TaxBreakdown {
		key := sub.Rate.String()
		if i, ok := idx[key]; ok {
			out[i].base = out[i].base.Add(sub.TaxableBase)
			continue
		}
		idx[key] = len(out)
		out = append(out, rateBase{rate: sub.Rate, base: sub.TaxableBase})
	}
	return out
}

func bookingText(inv model.Invoice) string {
	if inv.Buyer.Name != "" {
		return inv.Buyer.Name + " " + inv.Number
	}
	return inv.Number
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
