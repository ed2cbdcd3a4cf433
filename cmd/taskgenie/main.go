// Package main is the entry point for the taskgenie CLI.
package main

import (
	"fmt"
	"os"

	"github.com/raychrisgdp/taskgenie/internal/cli"
)

// version is set at build time using -ldflags.
var version = "0.1.0"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
