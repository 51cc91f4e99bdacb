package generate

import (
	"fmt"
	"strings"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Generate serializes an invoice into the requested XML dialect.
func Generate(inv model.Invoice, dialect model.Dialect) ([]byte, error) {
	switch dialect {
	case model.DialectUBL:
		return BuildUBL(inv)
	case model.DialectCII:
		return BuildCII(inv)
	default:
		return nil, model.ErrGeneration(fmt.Sprintf("no generator for dialect %q", dialect), nil)
	}
}

// GenerateHybridPDF serializes the invoice as CII and embeds it into
// carrierPDF. An empty carrier produces a fresh single-page document.
func GenerateHybridPDF(inv model.Invoice, carrierPDF []byte) ([]byte, error) {
	xmlData, err := BuildCII(inv)
	if err != nil {
		return nil, err
	}
	return EmbedInPDF(carrierPDF, xmlData)
}

// SuggestFilename returns a conventional output filename for the invoice in
// the given dialect, e.g. "RE-2025-042_xrechnung.xml".
func SuggestFilename(inv model.Invoice, dialect model.Dialect, pdf bool) string {
	base := sanitizeFilename(inv.Number)
	if base == "" {
		base = "rechnung"
	}
	if pdf {
		return base + "_zugferd.pdf"
	}
	switch dialect {
	case model.DialectUBL:
		return base + "_xrechnung.xml"
	case model.DialectCII:
		return base + "_facturx.xml"
	default:
		return base + ".xml"
	}
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}
