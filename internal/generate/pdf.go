package generate

import (
	"bytes"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// EmbeddedXMLName is the attachment filename for the invoice XML inside a
// hybrid PDF, following the Factur-X convention.
const EmbeddedXMLName = "factur-x.xml"

const embeddedXMLDescription = "Factur-X/ZUGFeRD Rechnungsdaten"

// EmbedInPDF attaches the invoice XML to pdfData and returns the resulting
// hybrid document. When pdfData is empty a minimal single-page carrier PDF is
// synthesized. A corrupt carrier yields a generation error, never a panic.
func EmbedInPDF(pdfData, invoiceXML []byte) ([]byte, error) {
	if len(pdfData) == 0 {
		pdfData = []byte(minimalCarrierPDF)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdfData), conf)
	if err != nil {
		return nil, model.ErrGeneration("carrier PDF is not readable", err)
	}

	now := time.Now()
	attachment := pdfmodel.Attachment{
		Reader:   bytes.NewReader(invoiceXML),
		ID:       EmbeddedXMLName,
		FileName: EmbeddedXMLName,
		Desc:     embeddedXMLDescription,
		ModTime:  &now,
	}
	if err := ctx.AddAttachment(attachment, false); err != nil {
		return nil, model.ErrGeneration("attaching invoice XML failed", err)
	}

	ctx.XRefTable.Title = "Elektronische Rechnung"
	ctx.XRefTable.Subject = "Rechnung mit eingebetteten Factur-X Daten"
	ctx.XRefTable.Creator = "einvoice"
	ctx.XRefTable.Producer = "einvoice pdf writer"

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, model.ErrGeneration("writing hybrid PDF failed", err)
	}
	return buf.Bytes(), nil
}

// minimalCarrierPDF is a valid empty A4 page used when the caller supplies no
// visual rendition of its own.
const minimalCarrierPDF = `%PDF-1.7
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>
endobj
xref
0 4
0000000000 65535 f 
0000000009 00000 n 
0000000058 00000 n 
0000000115 00000 n 
trailer
<< /Size 4 /Root 1 0 R >>
startxref
204
%%EOF
`
