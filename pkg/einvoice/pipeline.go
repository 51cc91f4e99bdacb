package einvoice

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/draft"
	"github.com/rechnungswerk/einvoice/internal/extract"
	"github.com/rechnungswerk/einvoice/internal/generate"
	"github.com/rechnungswerk/einvoice/internal/ledger"
	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/internal/validate"
)

// Re-exported types so callers do not import internal packages.
type (
	Invoice          = model.Invoice
	ValidationResult = validate.Result
	Finding          = validate.Finding
	Dialect          = model.Dialect
	ExtractionResult = extract.Result
)

const (
	DialectUBL = model.DialectUBL
	DialectCII = model.DialectCII
)

// Processor wires the pipeline stages behind one entry point.
type Processor struct {
	options   PipelineOptions
	detector  *extract.Detector
	validator validate.Validator
	drafter   *draft.Extractor
	logger    *zap.Logger
}

// ProcessorOption configures construction.
type ProcessorOption func(*Processor)

// WithLogger sets the logger; zap.NewNop() by default.
func WithLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a processor with the given pipeline options.
func NewProcessor(opts PipelineOptions, popts ...ProcessorOption) *Processor {
	p := &Processor{
		options:  opts,
		detector: extract.NewDetector(),
		logger:   zap.NewNop(),
	}
	for _, opt := range popts {
		opt(p)
	}

	p.validator = validate.New(validate.ToolConfig{
		JavaPath:     opts.ValidatorJavaPath,
		JarPath:      opts.ValidatorJarPath,
		ScenarioPath: opts.ValidatorScenarioPath,
		Timeout:      opts.ValidatorTimeout,
	}, validate.WithLogger(p.logger))

	if opts.EnableDraft && opts.DraftAPIKey != "" {
		var clientOpts []draft.ClientOption
		if opts.DraftBaseURL != "" {
			clientOpts = append(clientOpts, draft.WithBaseURL(opts.DraftBaseURL))
		}
		if opts.DraftModel != "" {
			clientOpts = append(clientOpts, draft.WithModel(opts.DraftModel))
		}
		client := draft.NewClient(opts.DraftAPIKey, clientOpts...)
		p.drafter = draft.NewExtractor(client, draft.WithLogger(p.logger))
	}

	return p
}

// NewDefaultProcessor creates a processor with default options.
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultPipelineOptions())
}

// ValidatorName reports which validator implementation is active.
func (p *Processor) ValidatorName() string {
	return p.validator.Name()
}

// Extract classifies raw bytes and returns the invoice XML, pulling it out
// of a PDF container when needed.
func (p *Processor) Extract(data []byte, filename string) (*ExtractionResult, error) {
	return p.detector.Detect(data, filename)
}

// ExtractReader is Extract for streams.
func (p *Processor) ExtractReader(r io.Reader, filename string) (*ExtractionResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.ErrExtraction("read", "failed to read input", err)
	}
	return p.Extract(data, filename)
}

// Validate runs rule validation over invoice XML. PDF input is extracted
// first.
func (p *Processor) Validate(ctx context.Context, data []byte, filename string) (*ValidationResult, error) {
	res, err := p.Extract(data, filename)
	if err != nil {
		return nil, err
	}
	return p.validator.Validate(ctx, res.XML)
}

// Generate serializes a canonical invoice into the requested dialect.
func (p *Processor) Generate(inv Invoice, dialect Dialect) ([]byte, string, error) {
	data, err := generate.Generate(inv, dialect)
	if err != nil {
		return nil, "", err
	}
	return data, generate.SuggestFilename(inv, dialect, false), nil
}

// GeneratePDF builds a ZUGFeRD hybrid PDF, embedding the invoice as CII.
// carrierPDF may be nil.
func (p *Processor) GeneratePDF(inv Invoice, carrierPDF []byte) ([]byte, string, error) {
	data, err := generate.GenerateHybridPDF(inv, carrierPDF)
	if err != nil {
		return nil, "", err
	}
	return data, generate.SuggestFilename(inv, model.DialectCII, true), nil
}

// ExportInput pairs an invoice with its validation verdict for export.
type ExportInput struct {
	Invoice Invoice
	Valid   bool
}

// ExportDATEV encodes the valid invoices as a DATEV posting batch.
func (p *Processor) ExportDATEV(inputs []ExportInput) ([]byte, error) {
	return ledger.EncodeDATEV(p.exportConfig(), toLedgerInputs(inputs))
}

// ExportWorkbook renders the bookings as an XLSX review workbook.
func (p *Processor) ExportWorkbook(inputs []ExportInput) ([]byte, error) {
	return ledger.WriteReviewWorkbook(p.options.Chart, p.options.DebtorAccount, toLedgerInputs(inputs))
}

func (p *Processor) exportConfig() ledger.ExportConfig {
	return ledger.ExportConfig{
		Chart:            p.options.Chart,
		ConsultantNumber: p.options.ConsultantNumber,
		ClientNumber:     p.options.ClientNumber,
		FiscalYearStart:  p.options.FiscalYearStart,
		DebtorAccount:    p.options.DebtorAccount,
	}
}

func toLedgerInputs(inputs []ExportInput) []ledger.Input {
	out := make([]ledger.Input, len(inputs))
	for i, in := range inputs {
		out[i] = ledger.Input{Invoice: in.Invoice, Valid: in.Valid}
	}
	return out
}

// DraftResult is a heuristic extraction outcome.
type DraftResult struct {
	Invoice     *Invoice
	Confidence  float64
	Warnings    []string
	NeedsReview bool
}

// DraftFromPDF extracts a draft invoice from an unstructured PDF via the
// configured LLM. Returns ErrToolUnavailable when drafting is disabled.
func (p *Processor) DraftFromPDF(ctx context.Context, pdfData []byte) (*DraftResult, error) {
	if p.drafter == nil {
		return nil, model.ErrToolUnavailable("draft extraction")
	}

	inv, err := p.drafter.ExtractFromPDF(ctx, pdfData)
	if err != nil {
		return nil, err
	}

	return &DraftResult{
		Invoice:     inv,
		Confidence:  inv.Confidence,
		Warnings:    inv.Warnings,
		NeedsReview: inv.Confidence < p.options.ReviewThreshold,
	}, nil
}
