package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

var (
	exportOutput string
	exportXLSX   bool
	exportForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [invoice.json...]",
	Short: "Export invoices as a DATEV posting batch",
	Long: `Export one or more canonical invoices (JSON) as a DATEV-importable
posting batch, one posting per distinct tax rate per invoice.

Each invoice is validated first; invalid invoices are excluded from the
batch. Use --force to skip validation and export everything.

Examples:
  einvoice export rechnung1.json rechnung2.json -o stapel.csv
  einvoice export rechnungen/*.json --xlsx -o buchungen.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (required)")
	exportCmd.Flags().BoolVar(&exportXLSX, "xlsx", false, "Write an XLSX review workbook instead of the DATEV batch")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Export without validating")
	exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	processor, err := buildProcessor(cfg, logger)
	if err != nil {
		return err
	}

	inputs := make([]einvoice.ExportInput, 0, len(args))
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var inv einvoice.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return fmt.Errorf("invalid invoice JSON in %s: %w", path, err)
		}

		valid := true
		if !exportForce {
			valid, err = validateInvoice(processor, inv)
			if err != nil {
				return fmt.Errorf("validating %s: %w", path, err)
			}
			if !valid {
				printVerbose("Excluding invalid invoice %s (%s)\n", inv.Number, path)
			}
		}
		inputs = append(inputs, einvoice.ExportInput{Invoice: inv, Valid: valid})
	}

	var data []byte
	if exportXLSX {
		data, err = processor.ExportWorkbook(inputs)
	} else {
		data, err = processor.ExportDATEV(inputs)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}

	exported := 0
	for _, in := range inputs {
		if in.Valid {
			exported++
		}
	}
	fmt.Printf("Wrote %s (%d of %d invoices)\n", exportOutput, exported, len(inputs))
	return nil
}

// validateInvoice generates the CII form of the invoice and runs rule
// validation over it.
func validateInvoice(processor *einvoice.Processor, inv einvoice.Invoice) (bool, error) {
	data, _, err := processor.Generate(inv, einvoice.DialectCII)
	if err != nil {
		return false, err
	}

	result, err := processor.Validate(context.Background(), data, "rechnung.xml")
	if err != nil {
		return false, err
	}
	return result.Valid, nil
}
