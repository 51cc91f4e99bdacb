package server

import (
	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/validate"
)

// ExtractResponse is the response for the extract endpoint.
type ExtractResponse struct {
	Dialect string `json:"dialect"`
	Profile string `json:"profile,omitempty"`
	Version string `json:"version,omitempty"`
	Source  string `json:"source,omitempty"`
	XML     string `json:"xml"`
}

// ValidateResponse is the response for the validate endpoint.
type ValidateResponse struct {
	Valid       bool               `json:"valid"`
	Findings    []validate.Finding `json:"findings,omitempty"`
	Profile     string             `json:"profile,omitempty"`
	Version     string             `json:"version,omitempty"`
	ToolVersion string             `json:"tool_version,omitempty"`
	ElapsedMS   int64              `json:"elapsed_ms"`
}

// GenerateRequest is the request body for the generate endpoint.
type GenerateRequest struct {
	Invoice model.Invoice `json:"invoice"`
	// Dialect is "UBL" or "CII"; CII when empty.
	Dialect string `json:"dialect,omitempty"`
	// PDF requests a ZUGFeRD hybrid instead of bare XML.
	PDF bool `json:"pdf,omitempty"`
}

// ExportRequest is the request body for the export endpoint.
type ExportRequest struct {
	Invoices []ExportInvoice `json:"invoices"`
}

// ExportInvoice pairs an invoice with its validation verdict.
type ExportInvoice struct {
	Invoice model.Invoice `json:"invoice"`
	Valid   bool          `json:"valid"`
}

// DraftResponse is the response for the draft endpoint.
type DraftResponse struct {
	Invoice     *model.Invoice `json:"invoice"`
	Confidence  float64        `json:"confidence"`
	Warnings    []string       `json:"warnings,omitempty"`
	NeedsReview bool           `json:"needs_review"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
