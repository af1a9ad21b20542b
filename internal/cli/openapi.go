package cli

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdaform/pkg/openapi"
)

func newOpenAPICommand(opts *RootOptions) *cobra.Command {
	var (
		output   string
		asYAML   bool
		basePath string
		title    string
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Describe the records HTTP API for the loaded schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("base-path") {
				basePath = a.cfg.Server.BasePath
			}
			genOpts := []openapi.Option{openapi.WithBasePath(basePath)}
			if title != "" {
				genOpts = append(genOpts, openapi.WithTitle(title))
			}
			doc, err := openapi.Generate(cmd.Context(), a.orch.Schema(), genOpts...)
			if err != nil {
				return WrapExitError(ExitFailure, "generate openapi", err)
			}

			raw, err := json.Marshal(doc)
			if err != nil {
				return WrapExitError(ExitFailure, "encode openapi", err)
			}
			var body []byte
			if asYAML {
				body, err = jsonToYAML(raw)
			} else {
				var buf bytes.Buffer
				err = json.Indent(&buf, raw, "", "  ")
				buf.WriteByte('\n')
				body = buf.Bytes()
			}
			if err != nil {
				return WrapExitError(ExitFailure, "encode openapi", err)
			}
			return writeOutput(cmd, output, body)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "emit YAML instead of JSON")
	cmd.Flags().StringVar(&basePath, "base-path", "", "route prefix (defaults to server.base_path)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key order.
func jsonToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
