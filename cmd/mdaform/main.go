// Command mdaform loads form metadata and collects, validates and stores
// records from the terminal or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-mdaform/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "mdaform:", msg)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
