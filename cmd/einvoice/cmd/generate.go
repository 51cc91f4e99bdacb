package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

var (
	generateDialect string
	generatePDF     bool
	generateOutput  string
	generateCarrier string
)

var generateCmd = &cobra.Command{
	Use:   "generate [invoice.json]",
	Short: "Generate invoice XML or a ZUGFeRD hybrid PDF",
	Long: `Generate a schema-compliant invoice document from a canonical
invoice given as JSON.

Missing schema-required fields are filled with placeholder substitutes,
so incomplete drafts still yield generatable documents. Run validate on
the output before sending it anywhere.

Examples:
  einvoice generate rechnung.json --dialect UBL
  einvoice generate rechnung.json --dialect CII -o rechnung.xml
  einvoice generate rechnung.json --pdf --carrier original.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateDialect, "dialect", "CII", "Target dialect (UBL, CII)")
	generateCmd.Flags().BoolVar(&generatePDF, "pdf", false, "Produce a ZUGFeRD hybrid PDF instead of bare XML")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: suggested filename)")
	generateCmd.Flags().StringVar(&generateCarrier, "carrier", "", "Existing PDF to embed the XML into (with --pdf)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var inv einvoice.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("invalid invoice JSON: %w", err)
	}

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

	var data []byte
	var name string
	if generatePDF {
		var carrier []byte
		if generateCarrier != "" {
			carrier, err = os.ReadFile(generateCarrier)
			if err != nil {
				return fmt.Errorf("failed to read carrier PDF: %w", err)
			}
		}
		data, name, err = processor.GeneratePDF(inv, carrier)
	} else {
		data, name, err = processor.Generate(inv, einvoice.Dialect(generateDialect))
	}
	if err != nil {
		return err
	}

	if generateOutput != "" {
		name = generateOutput
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", name, len(data))
	return nil
}
