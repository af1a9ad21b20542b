package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/internal/schema/parser"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

// CheckResult reports whether one schema document builds.
type CheckResult struct {
	Path    string `json:"path"`
	Modules int    `json:"modules"`
	Forms   int    `json:"forms"`
	Error   string `json:"error,omitempty"`
}

func newSchemaCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [PATH...]",
		Short: "Parse schema documents and report format errors",
		Long:  "Parse and build each document. Without arguments the configured schema file is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				path, err := schemaPath(opts)
				if err != nil {
					return err
				}
				paths = []string{path}
			}

			p := parser.New(schema.NewParserOptions())
			builder := model.NewBuilder()
			results := make([]CheckResult, 0, len(paths))
			var text strings.Builder
			failed := 0
			for _, path := range paths {
				result := checkDocument(cmd.Context(), p, builder, path)
				results = append(results, result)
				if result.Error != "" {
					failed++
					fmt.Fprintf(&text, "FAIL %s: %s\n", path, result.Error)
					continue
				}
				fmt.Fprintf(&text, "ok   %s (%d modules, %d forms)\n", path, result.Modules, result.Forms)
			}

			if err := newFormatter(cmd, opts).Success(results, strings.TrimSuffix(text.String(), "\n")); err != nil {
				return err
			}
			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents failed", failed, len(paths)))
			}
			return nil
		},
	}
}

func checkDocument(ctx context.Context, p schema.Parser, builder model.Builder, path string) CheckResult {
	result := CheckResult{Path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), raw)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	ir, err := p.Parse(ctx, doc)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	built, err := builder.Build(ir)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for _, module := range built.Modules() {
		result.Modules++
		result.Forms += len(module.Forms())
	}
	return result
}
