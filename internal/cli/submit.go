package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/pkg/aggregate"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/renderers/tui"
	"github.com/goliatone/go-mdaform/pkg/store"
)

// SubmitOutput is the JSON payload reported for a stored submission.
type SubmitOutput struct {
	Record  json.RawMessage `json:"record"`
	Created bool            `json:"created"`
	Total   *float64        `json:"total,omitempty"`
}

func newSubmitCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit MODULE FORM",
		Short: "Validate and store a submission read from JSON",
		Long: `Read {"values": {...}, "details": [[...], ...]} from --file or stdin,
validate it against the form and store it. A "values.id" naming an existing
record updates that record.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return WrapExitError(ExitCommandError, "read submission", err)
			}
			var sub tui.Submission
			if err := json.Unmarshal(raw, &sub); err != nil {
				return WrapExitError(ExitCommandError, "decode submission", err)
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.orch.Submit(cmd.Context(), orchestrator.SubmitRequest{
				Module: args[0],
				Form:   args[1],
				Values: sub.Values,
				Rows:   sub.Details,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "submit", err)
			}
			return reportSubmit(cmd, opts, a, args[0], args[1], res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "submission JSON file (- for stdin)")
	return cmd
}

// reportSubmit prints a stored record or the violations that rejected it.
func reportSubmit(cmd *cobra.Command, opts *RootOptions, a *app, module, form string, res orchestrator.SubmitResult) error {
	out := newFormatter(cmd, opts)
	if !res.Valid() {
		if err := out.Failure("submission rejected", res.Errors.Messages(), res.Errors); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "")
	}

	f, err := a.orch.Form(module, form)
	if err != nil {
		return WrapExitError(ExitFailure, "submit", err)
	}
	encoded, err := store.EncodeRecord(res.Record, f.Columns())
	if err != nil {
		return WrapExitError(ExitFailure, "encode record", err)
	}

	verb := "updated"
	if res.Created {
		verb = "created"
	}
	payload := SubmitOutput{Record: encoded, Created: res.Created}
	text := fmt.Sprintf("%s %s/%s %s", verb, module, form, res.Record.ID)
	if f.HasDetails() {
		total := res.Total
		payload.Total = &total
		text += " (total " + aggregate.FormatAmount(total) + ")"
	}
	return out.Success(payload, text)
}
