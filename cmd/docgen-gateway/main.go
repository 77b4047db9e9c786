// Package main is the entry point for docgen-gateway.
package main

import (
	"os"

	"github.com/PrathameshJoshi123/doc-generator/cmd/docgen-gateway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
