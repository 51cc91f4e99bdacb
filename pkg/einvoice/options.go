// Package einvoice is the public facade over the e-invoice pipeline:
// detection/extraction, rule validation, document generation, draft
// extraction and ledger export.
package einvoice

import (
	"time"

	"github.com/rechnungswerk/einvoice/internal/ledger"
)

// PipelineOptions configures a Processor.
type PipelineOptions struct {
	// External validation tool. When the tool cannot be probed the
	// processor degrades to the structural fallback.
	ValidatorJavaPath     string
	ValidatorJarPath      string
	ValidatorScenarioPath string
	ValidatorTimeout      time.Duration

	// LLM draft extraction; disabled when the API key is empty.
	EnableDraft  bool
	DraftAPIKey  string
	DraftBaseURL string
	DraftModel   string

	// Ledger export.
	Chart            ledger.Chart
	ConsultantNumber int
	ClientNumber     int
	FiscalYearStart  time.Time
	DebtorAccount    string

	// ReviewThreshold marks draft results below this confidence as
	// needing manual review.
	ReviewThreshold float64
}

// DefaultPipelineOptions returns sensible defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		ValidatorJavaPath: "java",
		ValidatorTimeout:  30 * time.Second,
		Chart:             ledger.ChartSKR03,
		ReviewThreshold:   0.8,
	}
}
