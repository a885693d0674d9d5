// Package main is the entry point of the docs-mcp-server binary.
package main

import (
	"os"

	"github.com/Coder-RL/docs-mcp-server/cmd/docs-mcp-server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
