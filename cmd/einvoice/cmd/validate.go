package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

var validateWorkers int

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice files against the business rules",
	Long: `Validate one or more invoice files (XML or hybrid PDF) against the
EN 16931 business rules.

The KoSIT validator is used when configured and runnable; otherwise a
structural fallback checks well-formedness only.

Examples:
  einvoice validate rechnung.xml
  einvoice validate *.xml rechnungen/*.pdf
  einvoice validate rechnung.xml -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().IntVar(&validateWorkers, "workers", 4, "Concurrent validations")
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files found to validate")
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

	printVerbose("Validating %d files with %q\n", len(paths), processor.ValidatorName())

	files := make([]einvoice.BatchFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, einvoice.BatchFile{Name: path, Data: data})
	}

	items := processor.ValidateBatch(context.Background(), files, validateWorkers)

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(items); err != nil {
			return err
		}
	} else {
		printValidationTable(items)
	}

	for _, item := range items {
		if item.Err != nil || (item.Result != nil && !item.Result.Valid) {
			return fmt.Errorf("validation failed for some files")
		}
	}
	return nil
}

func printValidationTable(items []einvoice.BatchItem) {
	for _, item := range items {
		switch {
		case item.Err != nil:
			fmt.Printf("✗ %s: ERROR: %v\n", item.Name, item.Err)
		case item.Result.Valid:
			fmt.Printf("✓ %s: VALID (%s)\n", item.Name, item.Dialect)
		default:
			fmt.Printf("✗ %s: INVALID (%s)\n", item.Name, item.Dialect)
		}
		if item.Result == nil {
			continue
		}
		for _, f := range item.Result.Findings {
			marker := "⚠"
			if f.Severity == "error" {
				marker = "-"
			}
			fmt.Printf("  %s [%s] %s\n", marker, f.Code, f.Message)
			if f.Suggestion != "" {
				fmt.Printf("    → %s\n", f.Suggestion)
			}
		}
	}
}

// collectFiles expands globs and directories into a flat file list.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && isSupportedFile(match) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".pdf":
		return true
	default:
		return false
	}
}
