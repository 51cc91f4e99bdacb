package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/config"
	"github.com/rechnungswerk/einvoice/internal/ledger"
	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configPath   string
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Process German e-invoices (XRechnung and ZUGFeRD)",
	Long: `einvoice is a CLI tool for the German e-invoice pipeline.

Supports:
  - Extraction: XRechnung (UBL) and ZUGFeRD/Factur-X (CII), including
    embedded XML in hybrid PDFs
  - Validation: KoSIT validator (external tool) with structural fallback
  - Generation: UBL or CII XML, plus ZUGFeRD hybrid PDFs
  - Export: DATEV posting batches and XLSX review workbooks

Examples:
  # Extract the invoice XML out of a hybrid PDF
  einvoice extract rechnung.pdf

  # Validate one or more invoices
  einvoice validate *.xml

  # Generate XRechnung XML from a canonical invoice
  einvoice generate rechnung.json --dialect UBL

  # Export validated invoices as a DATEV batch
  einvoice export rechnung1.json rechnung2.json -o stapel.csv`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional, absence is not an error.
	_ = godotenv.Load()
}

// loadConfig reads the YAML/env configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// buildLogger returns a console logger at a level matching --verbose.
func buildLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildProcessor wires a pipeline processor from the configuration.
func buildProcessor(cfg *config.Config, logger *zap.Logger) (*einvoice.Processor, error) {
	opts := einvoice.DefaultPipelineOptions()
	opts.ValidatorJavaPath = cfg.Validator.JavaPath
	opts.ValidatorJarPath = cfg.Validator.JarPath
	opts.ValidatorScenarioPath = cfg.Validator.ScenarioPath
	opts.ValidatorTimeout = cfg.Validator.Timeout

	opts.Chart = ledger.Chart(cfg.Export.Chart)
	opts.ConsultantNumber = cfg.Export.ConsultantNumber
	opts.ClientNumber = cfg.Export.ClientNumber
	opts.DebtorAccount = cfg.Export.DebtorAccount
	if cfg.Export.FiscalYearStart != "" {
		start, err := time.Parse("2006-01-02", cfg.Export.FiscalYearStart)
		if err != nil {
			return nil, fmt.Errorf("invalid fiscal_year_start: %w", err)
		}
		opts.FiscalYearStart = start
	}

	if cfg.Draft.APIKey != "" {
		opts.EnableDraft = true
		opts.DraftAPIKey = cfg.Draft.APIKey
		opts.DraftBaseURL = cfg.Draft.BaseURL
		opts.DraftModel = cfg.Draft.Model
	}

	return einvoice.NewProcessor(opts, einvoice.WithLogger(logger)), nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
