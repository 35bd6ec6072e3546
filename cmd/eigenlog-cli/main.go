// Package main provides the entry point for eigenlog-cli, the query and
// inspection client for eigenlog.
package main

import (
	"fmt"
	"os"

	"github.com/eigenlog/eigenlog/internal/cli/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
