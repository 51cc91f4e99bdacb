// Package extract classifies inbound files and pulls structured invoice XML
// out of them. Supported inputs are plain XML invoices (UBL or CII syntax)
// and PDF containers carrying an embedded XML invoice (ZUGFeRD/Factur-X).
package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Format is the coarse content class of an inbound file.
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Root namespaces of the two supported dialects.
const (
	nsUBLInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCIIInvoice = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
)

var pdfMagic = []byte("%PDF")

// DetectFormat sniffs the coarse content format from magic bytes.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	trimmed = bytes.TrimPrefix(trimmed, []byte{0xEF, 0xBB, 0xBF})

	switch {
	case bytes.HasPrefix(trimmed, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatXML
	default:
		return FormatUnknown
	}
}

// Result is the outcome of a successful detection run.
type Result struct {
	// Dialect of the invoice XML.
	Dialect model.Dialect
	// XML is the invoice document: the input itself for plain XML, or the
	// embedded attachment content for the PDF case.
	XML []byte
	// Profile and Version are only detected on the PDF path; plain XML
	// input reports ProfileUnknown.
	Profile model.Profile
	Version string
	// Source names where the XML came from: the input filename, or the
	// attachment name inside the PDF.
	Source string
}

// Detector classifies raw file bytes and extracts the invoice XML.
type Detector struct{}

// NewDetector creates a detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect classifies data and returns the invoice XML it carries. The
// filename is a hint used for diagnostics only.
func (d *Detector) Detect(data []byte, filename string) (*Result, error) {
	switch DetectFormat(data) {
	case FormatXML:
		dialect, err := ClassifyDialect(data)
		if err != nil {
			return nil, err
		}
		return &Result{
			Dialect: dialect,
			XML:     data,
			Profile: model.ProfileUnknown,
			Source:  filename,
		}, nil

	case FormatPDF:
		name, xmlData, err := extractEmbeddedXML(data)
		if err != nil {
			return nil, err
		}
		dialect, err := ClassifyDialect(xmlData)
		if err != nil {
			return nil, err
		}
		profile, version := DetectProfile(xmlData)
		return &Result{
			Dialect: dialect,
			XML:     xmlData,
			Profile: profile,
			Version: version,
			Source:  name,
		}, nil

	default:
		return nil, model.ErrUnsupportedFormat(fmt.Sprintf("%s is neither XML nor PDF", filename))
	}
}

// ClassifyDialect inspects the root element's namespace and returns the
// invoice dialect the document is written in.
func ClassifyDialect(data []byte) (model.Dialect, error) {
	root, err := rootElement(data)
	if err != nil {
		return model.DialectUnknown, model.ErrUnsupportedFormat(fmt.Sprintf("not well-formed XML: %v", err))
	}

	switch root.Name.Space {
	case nsUBLInvoice:
		return model.DialectUBL, nil
	case nsCIIInvoice:
		return model.DialectCII, nil
	}

	return model.DialectUnknown, model.ErrUnsupportedFormat(
		fmt.Sprintf("unknown invoice namespace %q on root element <%s>", root.Name.Space, root.Name.Local))
}

// rootElement decodes up to the first start element.
func rootElement(data []byte) (*xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

// looksLikeInvoiceXML reports whether content carries recognizable invoice
// markers of either dialect. Used when scanning unnamed PDF attachments.
func looksLikeInvoiceXML(content []byte) bool {
	s := string(content)
	return strings.Contains(s, nsCIIInvoice) ||
		strings.Contains(s, nsUBLInvoice) ||
		strings.Contains(s, "CrossIndustryInvoice") ||
		strings.Contains(s, "<Invoice")
}
