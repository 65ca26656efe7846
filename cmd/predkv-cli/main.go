// Package main provides the entry point for predkv-cli.
//
// predkv-cli is the command-line client for a PredKV server.
package main

import (
	"fmt"
	"os"

	"github.com/predkv/predkv/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
