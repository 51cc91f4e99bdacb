package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/money"
)

func TestInvoice_Creation(t *testing.T) {
	inv := model.Invoice{
		Number:    "RE-2026-001",
		IssueDate: time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
		Seller: model.Party{
			Name:  "Acme GmbH",
			VATID: "DE123456789",
		},
		Buyer: model.Party{
			Name: "Contoso AG",
		},
		Currency: "EUR",
	}

	assert.Equal(t, "RE-2026-001", inv.Number)
	assert.Equal(t, "DE123456789", inv.Seller.VATID)
	assert.Equal(t, "EUR", inv.CurrencyOrDefault())
}

func TestInvoice_CurrencyDefault(t *testing.T) {
	inv := model.Invoice{}
	assert.Equal(t, "EUR", inv.CurrencyOrDefault())
}

func TestLineItem_Calculate(t *testing.T) {
	item := model.LineItem{
		Number:      1,
		Description: "Consulting",
		Quantity:    decimal.NewFromInt(8),
		UnitPrice:   money.MustFromString("125.00"),
		TaxRate:     decimal.NewFromInt(19),
	}

	item.Calculate()

	assert.True(t, item.Total.Equal(money.MustFromString("1000.00")),
		"expected total 1000.00, got %s", item.Total.String())
	assert.True(t, item.TaxAmount().Equal(money.MustFromString("190.00")),
		"expected tax 190.00, got %s", item.TaxAmount().String())
	assert.Equal(t, model.TaxCategoryStandard, item.TaxCategory)
}

func TestInvoice_CalculateTotals(t *testing.T) {
	inv := model.Invoice{
		Items: []model.LineItem{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(8),
				UnitPrice:   money.MustFromString("125.00"),
				TaxRate:     decimal.NewFromInt(19),
			},
		},
	}

	inv.CalculateTotals()

	assert.True(t, inv.NetAmount.Equal(money.MustFromString("1000.00")),
		"expected net 1000.00, got %s", inv.NetAmount.String())
	assert.True(t, inv.TaxAmount.Equal(money.MustFromString("190.00")),
		"expected tax 190.00, got %s", inv.TaxAmount.String())
	assert.True(t, inv.GrossAmount.Equal(money.MustFromString("1190.00")),
		"expected gross 1190.00, got %s", inv.GrossAmount.String())

	require.Len(t, inv.TaxBreakdown, 1)
	assert.True(t, inv.TaxBreakdown[0].Rate.Equal(decimal.NewFromInt(19)))
	assert.True(t, inv.TaxBreakdown[0].TaxAmount.Equal(money.MustFromString("190.00")))
}

func TestInvoice_CalculateTotals_MultiRate(t *testing.T) {
	inv := model.Invoice{
		Items: []model.LineItem{
			{
				Description: "Hardware",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   money.MustFromString("100.00"),
				TaxRate:     decimal.NewFromInt(19),
			},
			{
				Description: "Books",
				Quantity:    decimal.NewFromInt(3),
				UnitPrice:   money.MustFromString("50.00"),
				TaxRate:     decimal.NewFromInt(7),
			},
		},
	}

	inv.CalculateTotals()

	// 200.00 @ 19% = 38.00, 150.00 @ 7% = 10.50
	assert.True(t, inv.NetAmount.Equal(money.MustFromString("350.00")))
	assert.True(t, inv.TaxAmount.Equal(money.MustFromString("48.50")))
	assert.True(t, inv.GrossAmount.Equal(money.MustFromString("398.50")))

	require.Len(t, inv.TaxBreakdown, 2)

	// Gross = net + tax, and subtotal tax amounts sum to the aggregate.
	sum := money.Zero
	for _, sub := range inv.TaxBreakdown {
		sum = sum.Add(sub.TaxAmount)
	}
	assert.True(t, sum.Equal(inv.TaxAmount))
	assert.True(t, inv.GrossAmount.Equal(inv.NetAmount.Add(inv.TaxAmount)))
}

func TestInvoice_CalculateTotals_NoItems(t *testing.T) {
	inv := model.Invoice{
		NetAmount: money.MustFromString("100.00"),
		TaxAmount: money.MustFromString("19.00"),
	}

	inv.CalculateTotals()

	assert.True(t, inv.GrossAmount.Equal(money.MustFromString("119.00")))
	assert.Empty(t, inv.TaxBreakdown)
}

func TestInvoice_DistinctTaxRates(t *testing.T) {
	inv := model.Invoice{
		Items: []model.LineItem{
			{TaxRate: decimal.NewFromInt(19)},
			{TaxRate: decimal.NewFromInt(7)},
			{TaxRate: decimal.NewFromInt(19)},
		},
	}

	rates := inv.DistinctTaxRates()
	require.Len(t, rates, 2)
	assert.True(t, rates[0].Equal(decimal.NewFromInt(19)))
	assert.True(t, rates[1].Equal(decimal.NewFromInt(7)))
}

func TestInvoice_ResolveDeliveryType(t *testing.T) {
	tests := []struct {
		name     string
		invoice  model.Invoice
		expected model.DeliveryType
	}{
		{
			name: "same country is domestic",
			invoice: model.Invoice{
				Seller: model.Party{Address: model.Address{CountryCode: "DE"}},
				Buyer:  model.Party{Address: model.Address{CountryCode: "DE"}},
			},
			expected: model.DeliveryDomestic,
		},
		{
			name: "EU buyer is intra-EU",
			invoice: model.Invoice{
				Seller: model.Party{Address: model.Address{CountryCode: "DE"}},
				Buyer:  model.Party{Address: model.Address{CountryCode: "FR"}},
			},
			expected: model.DeliveryIntraEU,
		},
		{
			name: "third country is export",
			invoice: model.Invoice{
				Seller: model.Party{Address: model.Address{CountryCode: "DE"}},
				Buyer:  model.Party{Address: model.Address{CountryCode: "CH"}},
			},
			expected: model.DeliveryExport,
		},
		{
			name: "explicit type wins",
			invoice: model.Invoice{
				DeliveryType: model.DeliveryExport,
				Seller:       model.Party{Address: model.Address{CountryCode: "DE"}},
				Buyer:        model.Party{Address: model.Address{CountryCode: "DE"}},
			},
			expected: model.DeliveryExport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.invoice.ResolveDeliveryType())
		})
	}
}

func TestPipelineError(t *testing.T) {
	err := model.ErrNoEmbeddedInvoice([]string{"logo.png"})

	require.Contains(t, err.Error(), "NO_EMBEDDED_INVOICE")
	require.Contains(t, err.Error(), "logo.png")
	assert.True(t, model.IsCode(err, model.ErrCodeNoEmbeddedInvoice))
	assert.False(t, err.Retryable)
}

func TestPipelineError_Timeout(t *testing.T) {
	cause := assert.AnError
	err := model.ErrValidationTimeout("30s", cause)

	assert.True(t, err.Retryable)
	require.ErrorIs(t, err, cause)
}
