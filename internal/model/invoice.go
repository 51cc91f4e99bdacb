package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/einvoice/internal/money"
)

// Dialect identifies one of the two supported invoice XML vocabularies.
type Dialect string

const (
	// DialectUBL is the UBL 2.1 syntax used by XRechnung.
	DialectUBL Dialect = "UBL"
	// DialectCII is the UN/CEFACT Cross Industry Invoice syntax used by
	// ZUGFeRD / Factur-X.
	DialectCII Dialect = "CII"
	// DialectUnknown means the detector could not classify the content.
	DialectUnknown Dialect = "UNKNOWN"
)

// Profile is a conformance profile declared by a ZUGFeRD/Factur-X document.
type Profile string

const (
	ProfileMinimum   Profile = "MINIMUM"
	ProfileBasicWL   Profile = "BASIC-WL"
	ProfileBasic     Profile = "BASIC"
	ProfileEN16931   Profile = "EN16931"
	ProfileExtended  Profile = "EXTENDED"
	ProfileXRechnung Profile = "XRECHNUNG"
	ProfileUnknown   Profile = "UNKNOWN"
)

// TaxCategory is the EN 16931 VAT category code of a line item.
type TaxCategory string

const (
	TaxCategoryStandard      TaxCategory = "S"
	TaxCategoryZero          TaxCategory = "Z"
	TaxCategoryExempt        TaxCategory = "E"
	TaxCategoryReverseCharge TaxCategory = "AE"
	TaxCategoryIntraEU       TaxCategory = "K"
	TaxCategoryExport        TaxCategory = "G"
)

// DeliveryType classifies where an invoice's goods or services were
// delivered. It drives revenue-account selection in the ledger export.
type DeliveryType string

const (
	DeliveryDomestic DeliveryType = "domestic"
	DeliveryIntraEU  DeliveryType = "intra_eu"
	DeliveryExport   DeliveryType = "export"
)

// Address is a postal address of a party.
type Address struct {
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	// CountryCode is the ISO 3166-1 alpha-2 code, e.g. "DE".
	CountryCode string `json:"country_code,omitempty"`
}

// Party is a seller or buyer on an invoice.
type Party struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
	// VATID is the Umsatzsteuer-Identifikationsnummer, e.g. "DE123456789".
	VATID string `json:"vat_id,omitempty"`
	// TaxNumber is the national Steuernummer.
	TaxNumber string `json:"tax_number,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Payment holds bank and payment terms data.
type Payment struct {
	IBAN      string `json:"iban,omitempty"`
	BIC       string `json:"bic,omitempty"`
	BankName  string `json:"bank_name,omitempty"`
	Reference string `json:"reference,omitempty"`
	// MeansCode is the UNTDID 4461 payment means code, e.g. "58" for
	// SEPA credit transfer.
	MeansCode string `json:"means_code,omitempty"`
	Terms     string `json:"terms,omitempty"`
}

// LineItem is one billed position of an invoice.
type LineItem struct {
	Number      int             `json:"number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	// Unit is the UN/ECE Recommendation 20 unit code, e.g. "C62", "HUR".
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxCategory TaxCategory     `json:"tax_category,omitempty"`
	// Total is quantity * unit price, net of tax. Set by Calculate.
	Total decimal.Decimal `json:"total"`
}

// Calculate computes the net line total from quantity and unit price.
func (li *LineItem) Calculate() {
	li.Total = money.Mul(li.Quantity, li.UnitPrice)
	if li.TaxCategory == "" {
		li.TaxCategory = TaxCategoryStandard
	}
}

// TaxAmount returns the VAT amount for this line.
func (li *LineItem) TaxAmount() decimal.Decimal {
	return money.Percent(li.Total, li.TaxRate)
}

// TaxSubtotal is one per-rate slice of an invoice's tax breakdown.
type TaxSubtotal struct {
	Rate        decimal.Decimal `json:"rate"`
	Category    TaxCategory     `json:"category"`
	TaxableBase decimal.Decimal `json:"taxable_base"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// Invoice is the canonical invoice shared by every pipeline stage. It is
// mutable while being assembled and treated as immutable once handed to a
// generator, validator or the ledger encoder.
type Invoice struct {
	Number       string     `json:"number"`
	IssueDate    time.Time  `json:"issue_date"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	// Currency is the ISO 4217 code; EUR when empty.
	Currency string `json:"currency,omitempty"`

	Seller Party `json:"seller"`
	Buyer  Party `json:"buyer"`

	Items []LineItem `json:"items,omitempty"`

	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`

	TaxBreakdown []TaxSubtotal `json:"tax_breakdown,omitempty"`

	Payment Payment `json:"payment"`

	// BuyerReference is the routing identifier (Leitweg-ID for public
	// sector buyers) carried in BT-10.
	BuyerReference    string `json:"buyer_reference,omitempty"`
	OrderReference    string `json:"order_reference,omitempty"`
	ContractReference string `json:"contract_reference,omitempty"`
	ProjectReference  string `json:"project_reference,omitempty"`

	DeliveryType DeliveryType `json:"delivery_type,omitempty"`

	// Confidence and Warnings are set only when the invoice originates
	// from heuristic draft extraction. User-authored invoices carry
	// neither.
	Confidence float64  `json:"confidence,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CurrencyOrDefault returns the invoice currency, defaulting to EUR.
func (inv *Invoice) CurrencyOrDefault() string {
	if inv.Currency == "" {
		return "EUR"
	}
	return inv.Currency
}

// CalculateTotals recomputes line totals, the per-rate tax breakdown and the
// aggregate net/tax/gross amounts from the line items. Invoices without line
// items keep their explicit amounts.
func (inv *Invoice) CalculateTotals() {
	if len(inv.Items) == 0 {
		if inv.GrossAmount.IsZero() {
			inv.GrossAmount = inv.NetAmount.Add(inv.TaxAmount)
		}
		return
	}

	net := money.Zero
	tax := money.Zero

	type groupKey struct {
		rate     string
		category TaxCategory
	}
	groups := make(map[groupKey]*TaxSubtotal)
	var order []groupKey

	for i := range inv.Items {
		item := &inv.Items[i]
		item.Calculate()
		net = net.Add(item.Total)

		key := groupKey{rate: item.TaxRate.String(), category: item.TaxCategory}
		sub, ok := groups[key]
		if !ok {
			sub = &TaxSubtotal{Rate: item.TaxRate, Category: item.TaxCategory}
			groups[key] = sub
			order = append(order, key)
		}
		sub.TaxableBase = sub.TaxableBase.Add(item.Total)
	}

	inv.TaxBreakdown = inv.TaxBreakdown[:0]
	for _, key := range order {
		sub := groups[key]
		sub.TaxAmount = money.Percent(sub.TaxableBase, sub.Rate)
		tax = tax.Add(sub.TaxAmount)
		inv.TaxBreakdown = append(inv.TaxBreakdown, *sub)
	}

	inv.NetAmount = money.Round(net)
	inv.TaxAmount = money.Round(tax)
	inv.GrossAmount = inv.NetAmount.Add(inv.TaxAmount)
}

// DistinctTaxRates returns the distinct tax rates present among line items,
// in first-seen order. Invoices without items report a single rate derived
// from the aggregate amounts (zero when no tax).
func (inv *Invoice) DistinctTaxRates() []decimal.Decimal {
	if len(inv.Items) == 0 {
		if inv.NetAmount.IsZero() || inv.TaxAmount.IsZero() {
			return []decimal.Decimal{decimal.Zero}
		}
		rate := inv.TaxAmount.Div(inv.NetAmount).Mul(decimal.NewFromInt(100)).Round(0)
		return []decimal.Decimal{rate}
	}

	seen := make(map[string]bool)
	var rates []decimal.Decimal
	for _, item := range inv.Items {
		key := item.TaxRate.String()
		if !seen[key] {
			seen[key] = true
			rates = append(rates, item.TaxRate)
		}
	}
	return rates
}

// ResolveDeliveryType returns the explicit delivery type if set, otherwise
// derives it from the buyer's country relative to the seller's.
func (inv *Invoice) ResolveDeliveryType() DeliveryType {
	if inv.DeliveryType != "" {
		return inv.DeliveryType
	}

	seller := inv.Seller.Address.CountryCode
	buyer := inv.Buyer.Address.CountryCode
	if buyer == "" || buyer == seller {
		return DeliveryDomestic
	}
	if euMembers[buyer] {
		return DeliveryIntraEU
	}
	return DeliveryExport
}

// EU member states as of 2024, ISO 3166-1 alpha-2.
var euMembers = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,
}
