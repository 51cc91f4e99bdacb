package extract

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	invmodel "github.com/rechnungswerk/einvoice/internal/model"
)

// Well-known embedded file names used by ZUGFeRD/Factur-X and XRechnung
// hybrid documents, checked case-insensitively and in this order.
var wellKnownAttachmentNames = []string{
	"factur-x.xml",
	"zugferd-invoice.xml",
	"ZUGFeRD-invoice.xml",
	"xrechnung.xml",
	"order-x.xml",
}

// extractEmbeddedXML locates the invoice XML inside a PDF container.
// Search order: the fixed well-known names first, then any .xml attachment
// whose content carries invoice markers.
func extractEmbeddedXML(pdfData []byte) (string, []byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	attachments, err := api.Attachments(bytes.NewReader(pdfData), conf)
	if err != nil {
		return "", nil, invmodel.ErrNoEmbeddedInvoice(nil)
	}
	if len(attachments) == 0 {
		return "", nil, invmodel.ErrNoEmbeddedInvoice([]string{})
	}
	names := make([]string, len(attachments))
	for i, a := range attachments {
		names[i] = a.FileName
	}

	// Pass 1: well-known names.
	for _, known := range wellKnownAttachmentNames {
		for _, name := range names {
			if strings.EqualFold(attachmentBaseName(name), known) {
				content, err := extractAttachment(pdfData, name, conf)
				if err != nil {
					continue
				}
				return attachmentBaseName(name), content, nil
			}
		}
	}

	// Pass 2: any .xml attachment with recognizable invoice content.
	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ".xml") {
			continue
		}
		content, err := extractAttachment(pdfData, name, conf)
		if err != nil {
			continue
		}
		if looksLikeInvoiceXML(content) {
			return attachmentBaseName(name), content, nil
		}
	}

	return "", nil, invmodel.ErrNoEmbeddedInvoice(names)
}

// extractAttachment pulls one named attachment's raw bytes.
func extractAttachment(pdfData []byte, name string, conf *model.Configuration) ([]byte, error) {
	aa, err := api.ExtractAttachmentsRaw(bytes.NewReader(pdfData), "", []string{name}, conf)
	if err != nil {
		return nil, err
	}
	if len(aa) == 0 {
		return nil, invmodel.ErrNoEmbeddedInvoice([]string{name})
	}
	return io.ReadAll(aa[0])
}

// attachmentBaseName strips any path prefix an attachment name may carry.
func attachmentBaseName(name string) string {
	return filepath.Base(strings.TrimSpace(name))
}
