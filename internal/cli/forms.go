package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FormSummary is one line of the forms listing.
type FormSummary struct {
	Module  string `json:"module"`
	Form    string `json:"form"`
	Fields  int    `json:"fields"`
	Columns int    `json:"columns"`
}

func newFormsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the modules and forms declared by the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var summaries []FormSummary
			var text strings.Builder
			for _, module := range a.orch.Schema().Modules() {
				for _, form := range module.Forms() {
					summaries = append(summaries, FormSummary{
						Module:  module.Name(),
						Form:    form.Name(),
						Fields:  len(form.Fields()),
						Columns: len(form.Columns()),
					})
					fmt.Fprintf(&text, "%s/%s (%d fields, %d columns)\n",
						module.Name(), form.Name(), len(form.Fields()), len(form.Columns()))
				}
			}
			return newFormatter(cmd, opts).Success(summaries, strings.TrimSuffix(text.String(), "\n"))
		},
	}
}
