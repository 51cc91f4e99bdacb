package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract invoice XML from a file",
	Long: `Classify a file as UBL or CII invoice XML, pulling the embedded
XML out of a ZUGFeRD/Factur-X hybrid PDF when needed.

Examples:
  einvoice extract rechnung.xml
  einvoice extract rechnung.pdf -o rechnung.xml
  einvoice extract rechnung.pdf -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write extracted XML to file (default: stdout summary only)")
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	result, err := processor.Extract(data, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, result.XML, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", extractOutput, err)
		}
		printVerbose("Wrote %d bytes to %s\n", len(result.XML), extractOutput)
	}

	if outputFormat == "json" {
		out := map[string]string{
			"dialect": string(result.Dialect),
			"profile": string(result.Profile),
			"version": result.Version,
			"source":  result.Source,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Printf("Dialect: %s\n", result.Dialect)
	if result.Profile != "" {
		fmt.Printf("Profile: %s", result.Profile)
		if result.Version != "" {
			fmt.Printf(" (version %s)", result.Version)
		}
		fmt.Println()
	}
	fmt.Printf("Source:  %s\n", result.Source)
	if extractOutput == "" {
		fmt.Printf("XML:     %d bytes (use -o to write)\n", len(result.XML))
	}
	return nil
}
