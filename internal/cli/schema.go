package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/pkg/editor"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

func newSchemaCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Edit the modules and forms of the schema file",
	}
	cmd.AddCommand(
		newSchemaListCommand(opts),
		newSchemaCheckCommand(opts),
		newSchemaEditCommand(opts, "add-module NAME", "Append a module", 1, func(d *editor.Document, args []string) error {
			return d.AddModule(args[0])
		}),
		newSchemaEditCommand(opts, "delete-module NAME", "Remove a module and its forms", 1, func(d *editor.Document, args []string) error {
			return d.DeleteModule(args[0])
		}),
		newSchemaEditCommand(opts, "add-form MODULE NAME", "Append an empty form to a module", 2, func(d *editor.Document, args []string) error {
			return d.AddForm(args[0], args[1])
		}),
		newSchemaEditCommand(opts, "delete-form MODULE NAME", "Remove a form", 2, func(d *editor.Document, args []string) error {
			return d.DeleteForm(args[0], args[1])
		}),
	)
	return cmd
}

// schemaPath resolves the schema location and rejects remote documents.
func schemaPath(opts *RootOptions) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	src, err := schema.ParseSource(cfg.Schema)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "schema source", err)
	}
	if src.Kind() != schema.SourceKindFile {
		return "", NewExitError(ExitCommandError, "only local schema files can be edited")
	}
	return src.Location(), nil
}

// openDocument reads the schema file. A missing file is an empty document
// when create is set.
func openDocument(path string, create bool) (*editor.Document, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && create {
		return editor.New(), nil
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read schema", err)
	}
	doc, err := editor.Open(raw)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open schema", err)
	}
	return doc, nil
}

func newSchemaListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List modules and forms as declared in the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := schemaPath(opts)
			if err != nil {
				return err
			}
			doc, err := openDocument(path, false)
			if err != nil {
				return err
			}

			data := make(map[string][]string)
			var text strings.Builder
			for _, module := range doc.Modules() {
				forms, err := doc.Forms(module)
				if err != nil {
					return WrapExitError(ExitFailure, "list forms", err)
				}
				if forms == nil {
					forms = []string{}
				}
				data[module] = forms
				fmt.Fprintf(&text, "%s: %s\n", module, strings.Join(forms, ", "))
			}
			return newFormatter(cmd, opts).Success(data, strings.TrimSuffix(text.String(), "\n"))
		},
	}
}

func newSchemaEditCommand(opts *RootOptions, use, short string, nargs int, edit func(*editor.Document, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := schemaPath(opts)
			if err != nil {
				return err
			}
			doc, err := openDocument(path, cmd.Name() == "add-module")
			if err != nil {
				return err
			}
			if err := edit(doc, args); err != nil {
				return WrapExitError(ExitFailure, cmd.Name(), err)
			}
			raw, err := doc.Bytes()
			if err != nil {
				return WrapExitError(ExitFailure, "encode schema", err)
			}
			if err := writeFileAtomic(path, raw); err != nil {
				return WrapExitError(ExitFailure, "write schema", err)
			}
			newFormatter(cmd, opts).VerboseLog("wrote %s", path)
			return newFormatter(cmd, opts).Success(map[string]any{"command": cmd.Name(), "args": args},
				fmt.Sprintf("%s %s", cmd.Name(), strings.Join(args, "/")))
		},
	}
}
