package generate

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/money"
)

// UBL namespaces and the XRechnung customization this generator emits.
const (
	nsUBL = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCAC = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCBC = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	xrechnungCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:xoev-de:kosit:standard:xrechnung_3.0"
	peppolBillingProfileID   = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	// UNTDID 1001: commercial invoice.
	invoiceTypeCode = "380"
)

// BuildUBL serializes an invoice as XRechnung-flavoured UBL 2.1.
func BuildUBL(inv model.Invoice) ([]byte, error) {
	inv = prepare(inv)
	currency := inv.CurrencyOrDefault()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsUBL)
	root.CreateAttr("xmlns:cac", nsCAC)
	root.CreateAttr("xmlns:cbc", nsCBC)

	text(root, "cbc:CustomizationID", xrechnungCustomizationID)
	text(root, "cbc:ProfileID", peppolBillingProfileID)
	text(root, "cbc:ID", inv.Number)
	text(root, "cbc:IssueDate", inv.IssueDate.Format("2006-01-02"))
	if inv.DueDate != nil {
		text(root, "cbc:DueDate", inv.DueDate.Format("2006-01-02"))
	}
	text(root, "cbc:InvoiceTypeCode", invoiceTypeCode)
	text(root, "cbc:DocumentCurrencyCode", currency)
	if inv.BuyerReference != "" {
		text(root, "cbc:BuyerReference", inv.BuyerReference)
	}
	if inv.OrderReference != "" {
		order := root.CreateElement("cac:OrderReference")
		text(order, "cbc:ID", inv.OrderReference)
	}
	if inv.ContractReference != "" {
		contract := root.CreateElement("cac:ContractDocumentReference")
		text(contract, "cbc:ID", inv.ContractReference)
	}
	if inv.ProjectReference != "" {
		project := root.CreateElement("cac:ProjectReference")
		text(project, "cbc:ID", inv.ProjectReference)
	}

	ublParty(root.CreateElement("cac:AccountingSupplierParty"), inv.Seller, true)
	ublParty(root.CreateElement("cac:AccountingCustomerParty"), inv.Buyer, false)

	if inv.DeliveryDate != nil {
		delivery := root.CreateElement("cac:Delivery")
		text(delivery, "cbc:ActualDeliveryDate", inv.DeliveryDate.Format("2006-01-02"))
	}

	ublPaymentMeans(root, inv)

	if inv.Payment.Terms != "" {
		terms := root.CreateElement("cac:PaymentTerms")
		text(terms, "cbc:Note", inv.Payment.Terms)
	}

	taxTotal := root.CreateElement("cac:TaxTotal")
	amount(taxTotal, "cbc:TaxAmount", inv.TaxAmount, currency)
	for _, sub := range inv.TaxBreakdown {
		st := taxTotal.CreateElement("cac:TaxSubtotal")
		amount(st, "cbc:TaxableAmount", sub.TaxableBase, currency)
		amount(st, "cbc:TaxAmount", sub.TaxAmount, currency)
		cat := st.CreateElement("cac:TaxCategory")
		text(cat, "cbc:ID", string(sub.Category))
		text(cat, "cbc:Percent", money.FormatRate(sub.Rate))
		scheme := cat.CreateElement("cac:TaxScheme")
		text(scheme, "cbc:ID", "VAT")
	}

	totals := root.CreateElement("cac:LegalMonetaryTotal")
	amount(totals, "cbc:LineExtensionAmount", inv.NetAmount, currency)
	amount(totals, "cbc:TaxExclusiveAmount", inv.NetAmount, currency)
	amount(totals, "cbc:TaxInclusiveAmount", inv.GrossAmount, currency)
	amount(totals, "cbc:PayableAmount", inv.GrossAmount, currency)

	for i, item := range inv.Items {
		line := root.CreateElement("cac:InvoiceLine")
		text(line, "cbc:ID", strconv.Itoa(i+1))
		qty := text(line, "cbc:InvoicedQuantity", item.Quantity.StringFixed(2))
		qty.CreateAttr("unitCode", unitOrDefault(item.Unit))
		amount(line, "cbc:LineExtensionAmount", item.Total, currency)

		itemEl := line.CreateElement("cac:Item")
		text(itemEl, "cbc:Name", item.Description)
		cat := itemEl.CreateElement("cac:ClassifiedTaxCategory")
		text(cat, "cbc:ID", string(item.TaxCategory))
		text(cat, "cbc:Percent", money.FormatRate(item.TaxRate))
		scheme := cat.CreateElement("cac:TaxScheme")
		text(scheme, "cbc:ID", "VAT")

		price := line.CreateElement("cac:Price")
		amount(price, "cbc:PriceAmount", item.UnitPrice, currency)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, model.ErrGeneration("UBL serialization failed", err)
	}
	return out, nil
}

func ublParty(wrapper *etree.Element, p model.Party, seller bool) {
	party := wrapper.CreateElement("cac:Party")

	endpoint := text(party, "cbc:EndpointID", endpointID(p))
	// EAS code EM: electronic mail.
	endpoint.CreateAttr("schemeID", "EM")

	name := party.CreateElement("cac:PartyName")
	text(name, "cbc:Name", p.Name)

	addr := party.CreateElement("cac:PostalAddress")
	if p.Address.Street != "" {
		text(addr, "cbc:StreetName", p.Address.Street)
	}
	if p.Address.City != "" {
		text(addr, "cbc:CityName", p.Address.City)
	}
	if p.Address.PostalCode != "" {
		text(addr, "cbc:PostalZone", p.Address.PostalCode)
	}
	country := addr.CreateElement("cac:Country")
	text(country, "cbc:IdentificationCode", countryOrDefault(p.Address.CountryCode))

	if seller && p.VATID != "" {
		taxScheme := party.CreateElement("cac:PartyTaxScheme")
		text(taxScheme, "cbc:CompanyID", p.VATID)
		scheme := taxScheme.CreateElement("cac:TaxScheme")
		text(scheme, "cbc:ID", "VAT")
	}

	legal := party.CreateElement("cac:PartyLegalEntity")
	text(legal, "cbc:RegistrationName", p.Name)
	if seller && p.TaxNumber != "" {
		text(legal, "cbc:CompanyID", p.TaxNumber)
	}

	if seller && (p.Phone != "" || p.Email != "") {
		contact := party.CreateElement("cac:Contact")
		if p.Phone != "" {
			text(contact, "cbc:Telephone", p.Phone)
		}
		if p.Email != "" {
			text(contact, "cbc:ElectronicMail", p.Email)
		}
	}
}

func ublPaymentMeans(root *etree.Element, inv model.Invoice) {
	means := root.CreateElement("cac:PaymentMeans")
	code := inv.Payment.MeansCode
	if code == "" {
		// UNTDID 4461: SEPA credit transfer.
		code = "58"
	}
	text(means, "cbc:PaymentMeansCode", code)
	if inv.Payment.Reference != "" {
		text(means, "cbc:PaymentID", inv.Payment.Reference)
	}
	if inv.Payment.IBAN != "" {
		account := means.CreateElement("cac:PayeeFinancialAccount")
		text(account, "cbc:ID", inv.Payment.IBAN)
		if inv.Payment.BankName != "" {
			text(account, "cbc:Name", inv.Payment.BankName)
		}
		if inv.Payment.BIC != "" {
			branch := account.CreateElement("cac:FinancialInstitutionBranch")
			text(branch, "cbc:ID", inv.Payment.BIC)
		}
	}
}

// text creates a child element with character content.
func text(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(value)
	return el
}

// amount creates a monetary child element with two fractional digits and a
// currencyID attribute.
func amount(parent *etree.Element, tag string, v interface{ StringFixed(int32) string }, currency string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(v.StringFixed(2))
	el.CreateAttr("currencyID", currency)
	return el
}

func unitOrDefault(unit string) string {
	if unit == "" {
		// UN/ECE Rec 20: one unit.
		return "C62"
	}
	return unit
}

func countryOrDefault(cc string) string {
	if cc == "" {
		return "DE"
	}
	return cc
}
