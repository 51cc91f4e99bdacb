package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/einvoice/internal/extract"
	"github.com/rechnungswerk/einvoice/internal/model"
)

const ublSample = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:ID>RE-2026-001</cbc:ID>
</Invoice>`

const ciiSample = `<?xml version="1.0" encoding="UTF-8"?>
<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
    xmlns:ram="urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100">
  <rsm:ExchangedDocumentContext>
    <ram:GuidelineSpecifiedDocumentContextParameter>
      <ram:ID>urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended</ram:ID>
    </ram:GuidelineSpecifiedDocumentContextParameter>
  </rsm:ExchangedDocumentContext>
</rsm:CrossIndustryInvoice>`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected extract.Format
	}{
		{"XML with declaration", []byte(`<?xml version="1.0"?><Invoice/>`), extract.FormatXML},
		{"XML without declaration", []byte(`<Invoice/>`), extract.FormatXML},
		{"XML with BOM", append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<Invoice/>`)...), extract.FormatXML},
		{"XML with leading whitespace", []byte("\n  <Invoice/>"), extract.FormatXML},
		{"PDF", []byte("%PDF-1.7\n%content"), extract.FormatPDF},
		{"plain text", []byte("some random text"), extract.FormatUnknown},
		{"empty", []byte{}, extract.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extract.DetectFormat(tt.data))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "xml", extract.FormatXML.String())
	assert.Equal(t, "pdf", extract.FormatPDF.String())
	assert.Equal(t, "unknown", extract.FormatUnknown.String())
}

func TestClassifyDialect_UBL(t *testing.T) {
	dialect, err := extract.ClassifyDialect([]byte(ublSample))
	require.NoError(t, err)
	assert.Equal(t, model.DialectUBL, dialect)
}

func TestClassifyDialect_CII(t *testing.T) {
	dialect, err := extract.ClassifyDialect([]byte(ciiSample))
	require.NoError(t, err)
	assert.Equal(t, model.DialectCII, dialect)
}

func TestClassifyDialect_UnknownNamespace(t *testing.T) {
	_, err := extract.ClassifyDialect([]byte(`<Invoice xmlns="urn:example:other"/>`))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeUnsupportedFormat))
}

func TestClassifyDialect_Malformed(t *testing.T) {
	_, err := extract.ClassifyDialect([]byte(`<Invoice`))
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeUnsupportedFormat))
}

func TestDetect_PlainXML(t *testing.T) {
	d := extract.NewDetector()

	result, err := d.Detect([]byte(ublSample), "invoice.xml")
	require.NoError(t, err)

	assert.Equal(t, model.DialectUBL, result.Dialect)
	assert.Equal(t, []byte(ublSample), result.XML)
	assert.Equal(t, model.ProfileUnknown, result.Profile)
	assert.Equal(t, "invoice.xml", result.Source)
}

func TestDetect_UnsupportedContent(t *testing.T) {
	d := extract.NewDetector()

	_, err := d.Detect([]byte("hello world"), "notes.txt")
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.ErrCodeUnsupportedFormat))
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		name            string
		guidelineID     string
		expectedProfile model.Profile
		expectedVersion string
	}{
		{
			"factur-x extended",
			"urn:cen.eu:en16931:2017#conformant#urn:factur-x.eu:1p0:extended",
			model.ProfileExtended, "",
		},
		{
			"factur-x basic",
			"urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic",
			model.ProfileBasic, "",
		},
		{
			"factur-x basic wl",
			"urn:factur-x.eu:1p0:basicwl",
			model.ProfileBasicWL, "",
		},
		{
			"factur-x minimum",
			"urn:factur-x.eu:1p0:minimum",
			model.ProfileMinimum, "",
		},
		{
			"plain en16931",
			"urn:cen.eu:en16931:2017",
			model.ProfileEN16931, "",
		},
		{
			"xrechnung with version",
			"urn:cen.eu:en16931:2017#compliant#urn:xoev-de:kosit:standard:xrechnung_2.3",
			model.ProfileXRechnung, "2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := `<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100">` +
				`<ram:GuidelineSpecifiedDocumentContextParameter><ram:ID>` + tt.guidelineID + `</ram:ID>` +
				`</ram:GuidelineSpecifiedDocumentContextParameter></rsm:CrossIndustryInvoice>`

			profile, version := extract.DetectProfile([]byte(xml))
			assert.Equal(t, tt.expectedProfile, profile)
			assert.Equal(t, tt.expectedVersion, version)
		})
	}
}

func TestDetectProfile_Unrecognized(t *testing.T) {
	profile, version := extract.DetectProfile([]byte(`<Invoice><ID>plain</ID></Invoice>`))
	assert.Equal(t, model.ProfileUnknown, profile)
	assert.Empty(t, version)
}

func BenchmarkDetectFormat(b *testing.B) {
	data := []byte(ciiSample)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		extract.DetectFormat(data)
	}
}
