package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rechnungswerk/einvoice/internal/server"
)

var serverDebug bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the pipeline.

Endpoints:
  - POST /api/v1/extract       - Extract invoice XML
  - POST /api/v1/validate      - Validate an invoice
  - POST /api/v1/generate      - Generate XML or hybrid PDF
  - POST /api/v1/export/datev  - Export a DATEV posting batch
  - POST /api/v1/export/xlsx   - Export an XLSX review workbook
  - POST /api/v1/draft         - Draft extraction from unstructured PDF
  - GET  /health               - Health check

Examples:
  einvoice serve
  einvoice serve --config config.yaml --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
}

func runServe(cmd *cobra.Command, args []string) error {
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

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.NewServer(&server.Config{
		Address:      address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        serverDebug,
	}, processor, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (validator: %s)\n", address, processor.ValidatorName())
	return srv.Run()
}
