// Package generate serializes canonical invoices into the two supported XML
// dialects (UBL for XRechnung, CII for ZUGFeRD/Factur-X) and embeds the CII
// form into PDF containers.
package generate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/money"
)

// Placeholders keeping schema-required elements filled for incomplete
// drafts. Callers needing strict completeness validate before generating.
const (
	placeholderSeller = "Lieferant"
	placeholderBuyer  = "Kaeufer"

	// endpointDomain is appended when synthesizing a routing endpoint
	// from a tax identifier.
	endpointDomain = "@einvoice.example"

	// defaultPaymentDays is the due-date substitution horizon.
	defaultPaymentDays = 30

	syntheticItemDescription = "Leistung gemaess Rechnung"
)

// prepare returns a generatable copy of inv: totals recomputed, and every
// schema-required field filled with its substitute when missing. The input
// invoice is not modified.
func prepare(inv model.Invoice) model.Invoice {
	out := inv
	out.Items = append([]model.LineItem(nil), inv.Items...)
	out.TaxBreakdown = append([]model.TaxSubtotal(nil), inv.TaxBreakdown...)

	if out.Seller.Name == "" {
		out.Seller.Name = placeholderSeller
	}
	if out.Buyer.Name == "" {
		out.Buyer.Name = placeholderBuyer
	}

	if out.IssueDate.IsZero() {
		out.IssueDate = time.Now().Truncate(24 * time.Hour)
	}
	if out.DueDate == nil && out.Payment.Terms == "" {
		due := out.IssueDate.AddDate(0, 0, defaultPaymentDays)
		out.DueDate = &due
	}

	// A draft without line items still needs one billable position.
	if len(out.Items) == 0 {
		net := out.NetAmount
		if net.IsZero() {
			net = out.GrossAmount.Sub(out.TaxAmount)
		}
		rate := decimal.Zero
		if !net.IsZero() && !out.TaxAmount.IsZero() {
			rate = out.TaxAmount.Div(net).Mul(decimal.NewFromInt(100)).Round(0)
		}
		out.Items = []model.LineItem{{
			Number:      1,
			Description: syntheticItemDescription,
			Quantity:    decimal.NewFromInt(1),
			Unit:        "C62",
			UnitPrice:   money.Round(net),
			TaxRate:     rate,
		}}
	}

	out.CalculateTotals()
	return out
}

// endpointID returns the routing endpoint identifier for a party,
// synthesizing one from a tax identifier when absent.
func endpointID(p model.Party) string {
	if p.Email != "" {
		return p.Email
	}
	local := p.VATID
	if local == "" {
		local = p.TaxNumber
	}
	if local == "" {
		local = "rechnung"
	}
	return local + endpointDomain
}
