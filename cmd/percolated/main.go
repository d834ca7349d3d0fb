// Package main provides the entry point for the percolated CLI.
package main

import (
	"os"

	"github.com/fenwick-labs/percolate/cmd/percolated/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
