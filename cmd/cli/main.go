// Package main is the entry point for the hotelcap CLI.
package main

import (
	"os"

	"hotel-capacity/cmd/cli/cmd"
	"hotel-capacity/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		logging.Sync()
		os.Exit(1)
	}
}
