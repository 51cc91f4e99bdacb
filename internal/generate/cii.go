package generate

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/money"
)

const (
	nsRSM = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRAM = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUDT = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"

	facturxEN16931Guideline = "urn:cen.eu:en16931:2017"

	// UNTDID 2379 qualifier for calendar dates, YYYYMMDD.
	dateFormat102 = "102"
)

// BuildCII serializes an invoice as an EN 16931 conformant UN/CEFACT Cross
// Industry Invoice, the XML flavour carried inside ZUGFeRD and Factur-X
// containers.
func BuildCII(inv model.Invoice) ([]byte, error) {
	inv = prepare(inv)
	currency := inv.CurrencyOrDefault()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", nsRSM)
	root.CreateAttr("xmlns:ram", nsRAM)
	root.CreateAttr("xmlns:udt", nsUDT)

	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	guideline := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	text(guideline, "ram:ID", facturxEN16931Guideline)

	document := root.CreateElement("rsm:ExchangedDocument")
	text(document, "ram:ID", inv.Number)
	text(document, "ram:TypeCode", invoiceTypeCode)
	ciiDate(document.CreateElement("ram:IssueDateTime"), inv.IssueDate)

	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")

	// Line items come before the header trade blocks, the CII schema
	// enforces this ordering.
	for i, item := range inv.Items {
		line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

		lineDoc := line.CreateElement("ram:AssociatedDocumentLineDocument")
		text(lineDoc, "ram:LineID", strconv.Itoa(i+1))

		product := line.CreateElement("ram:SpecifiedTradeProduct")
		text(product, "ram:Name", item.Description)

		agreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
		price := agreement.CreateElement("ram:NetPriceProductTradePrice")
		text(price, "ram:ChargeAmount", item.UnitPrice.StringFixed(2))

		delivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
		qty := text(delivery, "ram:BilledQuantity", item.Quantity.StringFixed(2))
		qty.CreateAttr("unitCode", unitOrDefault(item.Unit))

		settlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
		lineTax := settlement.CreateElement("ram:ApplicableTradeTax")
		text(lineTax, "ram:TypeCode", "VAT")
		text(lineTax, "ram:CategoryCode", string(item.TaxCategory))
		text(lineTax, "ram:RateApplicablePercent", money.FormatRate(item.TaxRate))
		summation := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
		text(summation, "ram:LineTotalAmount", item.Total.StringFixed(2))
	}

	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	if inv.BuyerReference != "" {
		text(agreement, "ram:BuyerReference", inv.BuyerReference)
	}
	ciiParty(agreement.CreateElement("ram:SellerTradeParty"), inv.Seller, true)
	ciiParty(agreement.CreateElement("ram:BuyerTradeParty"), inv.Buyer, false)
	if inv.OrderReference != "" {
		order := agreement.CreateElement("ram:BuyerOrderReferencedDocument")
		text(order, "ram:IssuerAssignedID", inv.OrderReference)
	}
	if inv.ContractReference != "" {
		contract := agreement.CreateElement("ram:ContractReferencedDocument")
		text(contract, "ram:IssuerAssignedID", inv.ContractReference)
	}

	delivery := tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	if inv.DeliveryDate != nil {
		event := delivery.CreateElement("ram:ActualDeliverySupplyChainEvent")
		ciiDate(event.CreateElement("ram:OccurrenceDateTime"), *inv.DeliveryDate)
	}

	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	if inv.Payment.Reference != "" {
		text(settlement, "ram:PaymentReference", inv.Payment.Reference)
	}
	text(settlement, "ram:InvoiceCurrencyCode", currency)

	ciiPaymentMeans(settlement, inv.Payment)

	for _, sub := range inv.TaxBreakdown {
		taxEl := settlement.CreateElement("ram:ApplicableTradeTax")
		text(taxEl, "ram:CalculatedAmount", sub.TaxAmount.StringFixed(2))
		text(taxEl, "ram:TypeCode", "VAT")
		text(taxEl, "ram:BasisAmount", sub.TaxableBase.StringFixed(2))
		text(taxEl, "ram:CategoryCode", string(sub.Category))
		text(taxEl, "ram:RateApplicablePercent", money.FormatRate(sub.Rate))
	}

	if inv.Payment.Terms != "" || inv.DueDate != nil {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		if inv.Payment.Terms != "" {
			text(terms, "ram:Description", inv.Payment.Terms)
		}
		if inv.DueDate != nil {
			ciiDate(terms.CreateElement("ram:DueDateDateTime"), *inv.DueDate)
		}
	}

	summation := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	text(summation, "ram:LineTotalAmount", inv.NetAmount.StringFixed(2))
	text(summation, "ram:TaxBasisTotalAmount", inv.NetAmount.StringFixed(2))
	taxTotal := text(summation, "ram:TaxTotalAmount", inv.TaxAmount.StringFixed(2))
	taxTotal.CreateAttr("currencyID", currency)
	text(summation, "ram:GrandTotalAmount", inv.GrossAmount.StringFixed(2))
	text(summation, "ram:DuePayableAmount", inv.GrossAmount.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, model.ErrGeneration("CII serialization failed", err)
	}
	return out, nil
}

func ciiParty(el *etree.Element, p model.Party, seller bool) {
	text(el, "ram:Name", p.Name)

	if seller && (p.Phone != "" || p.Email != "") {
		contact := el.CreateElement("ram:DefinedTradeContact")
		if p.Phone != "" {
			phone := contact.CreateElement("ram:TelephoneUniversalCommunication")
			text(phone, "ram:CompleteNumber", p.Phone)
		}
		if p.Email != "" {
			mail := contact.CreateElement("ram:EmailURIUniversalCommunication")
			text(mail, "ram:URIID", p.Email)
		}
	}

	addr := el.CreateElement("ram:PostalTradeAddress")
	if p.Address.PostalCode != "" {
		text(addr, "ram:PostcodeCode", p.Address.PostalCode)
	}
	if p.Address.Street != "" {
		text(addr, "ram:LineOne", p.Address.Street)
	}
	if p.Address.City != "" {
		text(addr, "ram:CityName", p.Address.City)
	}
	text(addr, "ram:CountryID", countryOrDefault(p.Address.CountryCode))

	endpoint := el.CreateElement("ram:URIUniversalCommunication")
	uri := text(endpoint, "ram:URIID", endpointID(p))
	uri.CreateAttr("schemeID", "EM")

	if seller {
		if p.TaxNumber != "" {
			reg := el.CreateElement("ram:SpecifiedTaxRegistration")
			id := text(reg, "ram:ID", p.TaxNumber)
			id.CreateAttr("schemeID", "FC")
		}
		if p.VATID != "" {
			reg := el.CreateElement("ram:SpecifiedTaxRegistration")
			id := text(reg, "ram:ID", p.VATID)
			id.CreateAttr("schemeID", "VA")
		}
	}
}

func ciiPaymentMeans(settlement *etree.Element, p model.Payment) {
	means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
	code := p.MeansCode
	if code == "" {
		code = "58"
	}
	text(means, "ram:TypeCode", code)
	if p.IBAN != "" {
		account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
		text(account, "ram:IBANID", p.IBAN)
		if p.BankName != "" {
			text(account, "ram:AccountName", p.BankName)
		}
		if p.BIC != "" {
			inst := means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution")
			text(inst, "ram:BICID", p.BIC)
		}
	}
}

func ciiDate(parent *etree.Element, t interface{ Format(string) string }) {
	el := parent.CreateElement("udt:DateTimeString")
	el.CreateAttr("format", dateFormat102)
	el.SetText(t.Format("20060102"))
}
