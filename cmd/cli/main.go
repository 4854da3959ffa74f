// Package main is the entry point for the dataforge CLI.
// The CLI is the developer terminal tool for interacting with the dataforge API.
package main

import (
	"os"

	"dataforge/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
