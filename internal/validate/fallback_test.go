package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/einvoice/internal/validate"
)

const wellFormedInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100">
  <rsm:ExchangedDocument/>
</rsm:CrossIndustryInvoice>`

func TestFallback_WellFormed(t *testing.T) {
	v := validate.NewFallbackValidator()

	result, err := v.Validate(context.Background(), []byte(wellFormedInvoice))
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, validate.FallbackToolVersion, result.ToolVersion)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, validate.SeverityInfo, result.Findings[0].Severity)
}

func TestFallback_Malformed(t *testing.T) {
	v := validate.NewFallbackValidator()

	result, err := v.Validate(context.Background(), []byte("<Invoice><unclosed>"))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, validate.SeverityError, result.Findings[0].Severity)
}

func TestFallback_NonXML(t *testing.T) {
	v := validate.NewFallbackValidator()

	// etree accepts rootless input, so plain text must still be rejected.
	result, err := v.Validate(context.Background(), []byte("plain text, no markup at all"))
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, validate.SeverityError, result.Findings[0].Severity)
}

func TestFallback_Idempotent(t *testing.T) {
	v := validate.NewFallbackValidator()
	ctx := context.Background()

	first, err := v.Validate(ctx, []byte(wellFormedInvoice))
	require.NoError(t, err)
	second, err := v.Validate(ctx, []byte(wellFormedInvoice))
	require.NoError(t, err)

	assert.Equal(t, first.Valid, second.Valid)
	require.Len(t, second.Findings, 1)
	assert.Equal(t, first.Findings[0], second.Findings[0])
}

func TestNew_FallsBackWithoutTool(t *testing.T) {
	// Empty config never probes successfully.
	v := validate.New(validate.ToolConfig{})
	assert.Equal(t, "structural-fallback", v.Name())
}
