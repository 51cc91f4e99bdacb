package main

import (
	"fmt"
	"os"

	"github.com/rechnungswerk/einvoice/cmd/einvoice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
