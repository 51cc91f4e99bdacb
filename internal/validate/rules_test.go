package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRule_Exact(t *testing.T) {
	msg, suggestion, ok := lookupRule("BR-CO-15")
	require.True(t, ok)
	assert.Contains(t, msg, "Brutto")
	assert.NotEmpty(t, suggestion)
}

func TestLookupRule_PrefixFallback(t *testing.T) {
	// Sub-coded variant resolves to its base rule.
	msg, _, ok := lookupRule("BR-DE-15-1")
	require.True(t, ok)
	assert.Contains(t, msg, "Leitweg-ID")
}

func TestLookupRule_Unknown(t *testing.T) {
	_, _, ok := lookupRule("XX-99")
	assert.False(t, ok)
}

func TestResult_Add_EnrichesKnownCode(t *testing.T) {
	r := NewResult()
	r.Add(Finding{Severity: SeverityError, Code: "BR-06", Message: "raw tool text"})

	require.Len(t, r.Findings, 1)
	assert.Contains(t, r.Findings[0].Message, "Verkaeufer")
	assert.NotEmpty(t, r.Findings[0].Suggestion)
}

func TestResult_Add_UnknownCodeGenericMessage(t *testing.T) {
	r := NewResult()
	r.Add(Finding{Severity: SeverityError, Code: "ZZ-42"})

	require.Len(t, r.Findings, 1)
	assert.Equal(t, "validation error: ZZ-42", r.Findings[0].Message)
	assert.Empty(t, r.Findings[0].Suggestion)
}

func TestResult_Finalize(t *testing.T) {
	tests := []struct {
		name     string
		accepted bool
		findings []Finding
		valid    bool
	}{
		{"accepted without findings", true, nil, true},
		{"accepted with warning", true, []Finding{{Severity: SeverityWarning}}, true},
		// Error findings fail the document even under an accept verdict.
		{"accepted with error", true, []Finding{{Severity: SeverityError}}, false},
		{"rejected without findings", false, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult()
			for _, f := range tt.findings {
				r.Add(f)
			}
			r.Finalize(tt.accepted)
			assert.Equal(t, tt.valid, r.Valid)
		})
	}
}
