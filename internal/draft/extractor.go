package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/money"
)

// minTextLength is the minimum extracted text size considered usable;
// anything shorter is likely a scan without a text layer.
const minTextLength = 40

// chatter is the LLM surface the extractor needs; satisfied by *Client.
type chatter interface {
	ChatText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor produces draft invoices from unstructured PDFs.
type Extractor struct {
	client chatter
	logger *zap.Logger
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a draft extractor backed by the given client.
func NewExtractor(client *Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFromPDF reads the PDF's text layer and asks the LLM for a draft
// invoice. The returned invoice always carries a confidence score and may
// carry warnings; callers must still run rule validation.
func (e *Extractor) ExtractFromPDF(ctx context.Context, pdfData []byte) (*model.Invoice, error) {
	text, err := pdfText(pdfData)
	if err != nil {
		return nil, model.ErrExtraction("pdf-text", "reading PDF text layer failed", err)
	}
	if len(strings.TrimSpace(text)) < minTextLength {
		return nil, model.ErrExtraction("pdf-text", "PDF has no usable text layer", nil)
	}

	e.logger.Debug("extracted text layer", zap.Int("chars", len(text)))

	return e.ExtractFromText(ctx, text)
}

// ExtractFromText asks the LLM for a draft invoice from raw text.
func (e *Extractor) ExtractFromText(ctx context.Context, text string) (*model.Invoice, error) {
	answer, err := e.client.ChatText(ctx, systemPromptExtractor, fmt.Sprintf(userPromptExtraction, text))
	if err != nil {
		return nil, model.ErrExtraction("llm", "draft extraction call failed", err)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(ExtractJSON(answer)), &payload); err != nil {
		e.logger.Warn("unparseable extraction answer", zap.Error(err))
		return nil, model.ErrExtraction("llm", "draft answer is not valid JSON", err)
	}

	inv := payload.toInvoice()
	e.logger.Info("draft invoice extracted",
		zap.String("number", inv.Number),
		zap.Float64("confidence", inv.Confidence),
		zap.Int("warnings", len(inv.Warnings)))
	return inv, nil
}

// pdfText concatenates the text layers of all pages.
func pdfText(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var b strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// draftPayload mirrors the JSON schema the prompt requests.
type draftPayload struct {
	InvoiceNumber string       `json:"invoice_number"`
	IssueDate     string       `json:"issue_date"`
	DueDate       string       `json:"due_date"`
	DeliveryDate  string       `json:"delivery_date"`
	Currency      string       `json:"currency"`
	Seller        partyPayload `json:"seller"`
	Buyer         partyPayload `json:"buyer"`
	Items         []struct {
		Description string  `json:"description"`
		Quantity    float64 `json:"quantity"`
		Unit        string  `json:"unit"`
		UnitPrice   float64 `json:"unit_price"`
		TaxRate     float64 `json:"tax_rate"`
	} `json:"items"`
	NetAmount      float64 `json:"net_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	GrossAmount    float64 `json:"gross_amount"`
	IBAN           string  `json:"iban"`
	BIC            string  `json:"bic"`
	PaymentTerms   string  `json:"payment_terms"`
	BuyerReference string  `json:"buyer_reference"`
	Confidence     float64 `json:"confidence"`
}

type partyPayload struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
	VATID       string `json:"vat_id"`
	TaxNumber   string `json:"tax_number"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (p partyPayload) toParty() model.Party {
	return model.Party{
		Name: p.Name,
		Address: model.Address{
			Street:      p.Street,
			PostalCode:  p.PostalCode,
			City:        p.City,
			CountryCode: p.CountryCode,
		},
		VATID:     p.VATID,
		TaxNumber: p.TaxNumber,
		Phone:     p.Phone,
		Email:     p.Email,
	}
}

func (p draftPayload) toInvoice() *model.Invoice {
	var warnings []string

	inv := &model.Invoice{
		Number:   p.InvoiceNumber,
		Currency: p.Currency,
		Seller:   p.Seller.toParty(),
		Buyer:    p.Buyer.toParty(),
		Payment: model.Payment{
			IBAN:  p.IBAN,
			BIC:   p.BIC,
			Terms: p.PaymentTerms,
		},
		BuyerReference: p.BuyerReference,
	}

	if p.InvoiceNumber == "" {
		warnings = append(warnings, "Rechnungsnummer nicht erkannt")
	}
	if p.Seller.Name == "" {
		warnings = append(warnings, "Verkaeufer nicht erkannt")
	}

	if t, ok := parseDate(p.IssueDate); ok {
		inv.IssueDate = t
	} else {
		warnings = append(warnings, "Rechnungsdatum nicht erkannt")
	}
	if t, ok := parseDate(p.DueDate); ok {
		inv.DueDate = &t
	}
	if t, ok := parseDate(p.DeliveryDate); ok {
		inv.DeliveryDate = &t
	}

	for i, item := range p.Items {
		li := model.LineItem{
			Number:      i + 1,
			Description: item.Description,
			Quantity:    decimal.NewFromFloat(item.Quantity),
			Unit:        item.Unit,
			UnitPrice:   money.Round(decimal.NewFromFloat(item.UnitPrice)),
			TaxRate:     decimal.NewFromFloat(item.TaxRate),
		}
		inv.Items = append(inv.Items, li)
	}

	reportedNet := money.Round(decimal.NewFromFloat(p.NetAmount))
	reportedTax := money.Round(decimal.NewFromFloat(p.TaxAmount))
	reportedGross := money.Round(decimal.NewFromFloat(p.GrossAmount))

	if len(inv.Items) > 0 {
		inv.CalculateTotals()
		if !reportedNet.IsZero() && !money.WithinOneCent(inv.NetAmount, reportedNet) {
			warnings = append(warnings, fmt.Sprintf(
				"Nettobetrag weicht von Positionssumme ab (%s vs %s)",
				money.Format(reportedNet), money.Format(inv.NetAmount)))
		}
	} else {
		inv.NetAmount = reportedNet
		inv.TaxAmount = reportedTax
		inv.GrossAmount = reportedGross
		warnings = append(warnings, "keine Rechnungspositionen erkannt")
	}

	if !reportedGross.IsZero() && !money.WithinOneCent(inv.GrossAmount, reportedGross) {
		warnings = append(warnings, fmt.Sprintf(
			"Bruttobetrag inkonsistent (%s vs %s)",
			money.Format(reportedGross), money.Format(inv.GrossAmount)))
	}

	inv.Confidence = clampConfidence(p.Confidence)
	inv.Warnings = warnings
	return inv
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
