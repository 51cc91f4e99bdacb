// Package validate runs the business-rule check against invoice XML. The
// primary implementation drives an external validation tool as a subprocess;
// a structural fallback takes over when the tool is not installed.
package validate

import (
	"time"

	"github.com/rechnungswerk/einvoice/internal/model"
)

// Severity of a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one normalized message from a validation run. Findings are
// produced per run and never mutated afterwards.
type Finding struct {
	Severity Severity `json:"severity"`
	// Code is the business-rule identifier, e.g. "BR-CO-15".
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	// Location is an XPath-like pointer into the validated document.
	Location string `json:"location,omitempty"`
	// Suggestion is an actionable fix hint, present when the rule code is
	// recognized.
	Suggestion string `json:"suggestion,omitempty"`
}

// Result aggregates the findings of one validation run.
type Result struct {
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings"`

	// Profile and Version are the conformance profile the document
	// declares, when derivable.
	Profile model.Profile `json:"profile,omitempty"`
	Version string        `json:"version,omitempty"`

	// ToolVersion identifies the validation tool that produced the
	// findings; "structural-fallback" when the tool was unavailable.
	ToolVersion string `json:"tool_version,omitempty"`

	Elapsed time.Duration `json:"elapsed_ms"`
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{Findings: make([]Finding, 0)}
}

// Add appends a finding, enriching it with the localized message and fix
// suggestion for recognized rule codes.
func (r *Result) Add(f Finding) {
	if f.Code != "" {
		if msg, suggestion, ok := lookupRule(f.Code); ok {
			f.Message = msg
			f.Suggestion = suggestion
		} else if f.Message == "" {
			f.Message = "validation error: " + f.Code
		}
	}
	r.Findings = append(r.Findings, f)
}

// ErrorCount returns the number of findings with severity error.
func (r *Result) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Finalize computes Valid from the tool's accept recommendation and the
// collected findings. The recommendation alone is not sufficient: malformed
// reports can carry error-level messages under an accept verdict, and those
// still fail the document.
func (r *Result) Finalize(accepted bool) {
	r.Valid = accepted && r.ErrorCount() == 0
}
