package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/pkg/store"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list MODULE FORM",
		Short: "List the stored records of a form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			module, form := args[0], args[1]
			records, err := a.orch.Records(cmd.Context(), module, form)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("list %s/%s", module, form), err)
			}
			f, err := a.orch.Form(module, form)
			if err != nil {
				return WrapExitError(ExitFailure, "list", err)
			}

			data := make([]json.RawMessage, 0, len(records))
			var text strings.Builder
			for _, record := range records {
				encoded, err := store.EncodeRecord(record, f.Columns())
				if err != nil {
					return WrapExitError(ExitFailure, "encode record", err)
				}
				data = append(data, encoded)
				text.WriteString(recordLine(record))
				text.WriteByte('\n')
			}
			if len(records) == 0 {
				text.WriteString("no records\n")
			}
			return newFormatter(cmd, opts).Success(data, strings.TrimSuffix(text.String(), "\n"))
		},
	}
}

// recordLine summarises a record as "id  createdAt  k=v, k=v  [n rows]".
func recordLine(record store.Record) string {
	var b strings.Builder
	b.WriteString(record.ID)
	b.WriteString("  ")
	b.WriteString(record.CreatedAt)
	names := record.FieldNames()
	if len(names) > 0 {
		b.WriteString("  ")
		for i, name := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(record.Fields[name])
		}
	}
	if record.Details != nil {
		fmt.Fprintf(&b, "  [%d rows]", len(record.Details))
	}
	return b.String()
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete MODULE FORM ID",
		Short: "Delete a stored record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			module, form, id := args[0], args[1], args[2]
			removed, err := a.orch.Delete(cmd.Context(), module, form, id)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("delete %s/%s", module, form), err)
			}
			if !removed {
				return NewExitError(ExitFailure, fmt.Sprintf("record %q not found in %s/%s", id, module, form))
			}
			return newFormatter(cmd, opts).Success(map[string]string{"id": id}, "deleted "+id)
		},
	}
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export MODULE FORM",
		Short: "Export the stored records of a form as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var buf bytes.Buffer
			if err := a.orch.Export(cmd.Context(), &buf, args[0], args[1]); err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("export %s/%s", args[0], args[1]), err)
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
