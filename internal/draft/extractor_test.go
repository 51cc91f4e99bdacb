package draft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/model"
)

type stubChatter struct {
	answer string
	err    error
}

func (s *stubChatter) ChatText(_ context.Context, _, _ string) (string, error) {
	return s.answer, s.err
}

const goodAnswer = "```json\n" + `{
  "invoice_number": "RE-2025-042",
  "issue_date": "2025-03-14",
  "currency": "EUR",
  "seller": {"name": "Acme GmbH", "vat_id": "DE123456789", "country_code": "DE"},
  "buyer": {"name": "Contoso AG", "country_code": "DE"},
  "items": [
    {"description": "Beratung", "quantity": 8, "unit": "HUR", "unit_price": 125.0, "tax_rate": 19}
  ],
  "net_amount": 1000.0,
  "tax_amount": 190.0,
  "gross_amount": 1190.0,
  "confidence": 0.92
}` + "\n```"

func TestExtractFromText(t *testing.T) {
	e := &Extractor{client: &stubChatter{answer: goodAnswer}, logger: zap.NewNop()}

	inv, err := e.ExtractFromText(context.Background(), "some invoice text")
	require.NoError(t, err)

	assert.Equal(t, "RE-2025-042", inv.Number)
	assert.Equal(t, "Acme GmbH", inv.Seller.Name)
	assert.Equal(t, "2025-03-14", inv.IssueDate.Format("2006-01-02"))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "1000.00", inv.NetAmount.StringFixed(2))
	assert.Equal(t, "1190.00", inv.GrossAmount.StringFixed(2))
	assert.InDelta(t, 0.92, inv.Confidence, 1e-9)
	assert.Empty(t, inv.Warnings)
}

func TestExtractFromText_AmountMismatchWarns(t *testing.T) {
	answer := `{
  "invoice_number": "RE-1",
  "issue_date": "2025-03-14",
  "seller": {"name": "Acme GmbH"},
  "items": [{"description": "Beratung", "quantity": 1, "unit_price": 100.0, "tax_rate": 19}],
  "net_amount": 250.0,
  "confidence": 0.5
}`
	e := &Extractor{client: &stubChatter{answer: answer}, logger: zap.NewNop()}

	inv, err := e.ExtractFromText(context.Background(), "text")
	require.NoError(t, err)

	// Line items win, the reported amount becomes a warning.
	assert.Equal(t, "100.00", inv.NetAmount.StringFixed(2))
	require.NotEmpty(t, inv.Warnings)
	assert.Contains(t, inv.Warnings[0], "Nettobetrag")
}

func TestExtractFromText_MissingFieldsWarn(t *testing.T) {
	e := &Extractor{client: &stubChatter{answer: `{"confidence": 0.1}`}, logger: zap.NewNop()}

	inv, err := e.ExtractFromText(context.Background(), "text")
	require.NoError(t, err)

	assert.Contains(t, inv.Warnings, "Rechnungsnummer nicht erkannt")
	assert.Contains(t, inv.Warnings, "Verkaeufer nicht erkannt")
	assert.Contains(t, inv.Warnings, "Rechnungsdatum nicht erkannt")
	assert.Contains(t, inv.Warnings, "keine Rechnungspositionen erkannt")
}

func TestExtractFromText_BadJSON(t *testing.T) {
	e := &Extractor{client: &stubChatter{answer: "sorry, no"}, logger: zap.NewNop()}

	_, err := e.ExtractFromText(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, model.IsCode(err, "EXTRACTION_ERROR"))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"generic fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"raw object", ` {"a":1} `, `{"a":1}`},
		{"prose", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-0.5))
	assert.Equal(t, 1.0, clampConfidence(3))
	assert.Equal(t, 0.7, clampConfidence(0.7))
}
