package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft [file.pdf]",
	Short: "Extract a draft invoice from an unstructured PDF",
	Long: `Extract a draft canonical invoice from a PDF without embedded XML,
using the PDF's text layer and the configured LLM.

The draft carries a confidence score and warnings; it must still pass
rule validation before use. Requires OPENAI_API_KEY.

Examples:
  einvoice draft scan.pdf
  einvoice draft scan.pdf > rechnung.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
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

	result, err := processor.DraftFromPDF(context.Background(), data)
	if err != nil {
		return err
	}

	if result.NeedsReview {
		printVerbose("Confidence %.2f below review threshold, manual review recommended\n", result.Confidence)
	}
	for _, w := range result.Warnings {
		printVerbose("Warning: %s\n", w)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result.Invoice)
}
