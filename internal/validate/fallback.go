package validate

import (
	"context"
	"time"

	"github.com/beevik/etree"

	"github.com/rechnungswerk/einvoice/internal/extract"
)

// FallbackToolVersion is reported by results produced without the external
// tool.
const FallbackToolVersion = "structural-fallback"

// fallbackNotice is the single informational finding every fallback run
// emits for well-formed input.
const fallbackNotice = "Nur strukturelle Pruefung durchgefuehrt; Geschaeftsregeln wurden nicht geprueft."

// FallbackValidator checks well-formedness only. It cannot detect
// business-rule violations, so callers must treat its results as lower
// confidence than the external tool's.
type FallbackValidator struct{}

// NewFallbackValidator creates the structural fallback.
func NewFallbackValidator() *FallbackValidator {
	return &FallbackValidator{}
}

// Name identifies this implementation.
func (v *FallbackValidator) Name() string {
	return "structural-fallback"
}

// Validate parses the XML for well-formedness. Malformed input yields a
// single error finding; well-formed input yields a single info finding
// noting the reduced check depth. Deterministic: the same input always
// produces the same findings.
func (v *FallbackValidator) Validate(_ context.Context, xmlData []byte) (*Result, error) {
	start := time.Now()

	result := NewResult()
	result.ToolVersion = FallbackToolVersion

	// etree parses rootless input without error, so a nil root must also
	// count as malformed.
	doc := etree.NewDocument()
	err := doc.ReadFromBytes(xmlData)
	if err != nil || doc.Root() == nil {
		message := "Das Dokument ist kein wohlgeformtes XML"
		if err != nil {
			message += ": " + err.Error()
		}
		result.Add(Finding{
			Severity: SeverityError,
			Message:  message,
		})
		result.Finalize(false)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	result.Add(Finding{
		Severity: SeverityInfo,
		Message:  fallbackNotice,
	})

	result.Profile, result.Version = extract.DetectProfile(xmlData)
	result.Finalize(true)
	result.Elapsed = time.Since(start)
	return result, nil
}
