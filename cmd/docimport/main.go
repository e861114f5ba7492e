// Command docimport checks discipline and document-type spreadsheets
// against a catalog file without touching the database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Optional; only LOG_LEVEL and LOG_FORMAT are read.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
