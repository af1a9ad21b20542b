// Package cli implements the mdaform command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/pkg/renderers/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Schema     string
	DataDir    string
	Verbose    bool
	Format     string // "json" | "text"

	// driver replaces the terminal prompts in tests.
	driver tui.PromptDriver
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mdaform CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mdaform",
		Short:         "Metadata-driven forms",
		Long:          "Load form metadata, collect and validate records, and store them per form.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "mdaform.yaml", "config file")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", "", "schema document path or URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "record directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newFormsCommand(opts))
	cmd.AddCommand(newRenderCommand(opts))
	cmd.AddCommand(newEntryCommand(opts))
	cmd.AddCommand(newSubmitCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newOpenAPICommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSchemaCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
