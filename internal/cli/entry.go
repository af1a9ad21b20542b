package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/tui"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

type entryOptions struct {
	recordID string
	target   string
	attempts int
}

func newEntryCommand(opts *RootOptions) *cobra.Command {
	eo := &entryOptions{}
	cmd := &cobra.Command{
		Use:   "entry MODULE FORM",
		Short: "Fill in a form interactively and store it",
		Long: `Prompt for every visible field and, for master-detail forms, for detail
rows. Rejected submissions are prompted again with the violations shown,
up to --attempts times.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := visibility.ParseTarget(eo.target)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid target", err)
			}
			if eo.attempts < 1 {
				return NewExitError(ExitCommandError, "--attempts must be at least 1")
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runEntry(cmd, opts, a, args[0], args[1], target, eo)
		},
	}

	cmd.Flags().StringVar(&eo.recordID, "id", "", "edit this stored record")
	cmd.Flags().StringVar(&eo.target, "target", "desktop", "device class (desktop|tablet|mobile)")
	cmd.Flags().IntVar(&eo.attempts, "attempts", 3, "prompt again this many times after a rejection")
	return cmd
}

func runEntry(cmd *cobra.Command, opts *RootOptions, a *app, module, form string, target visibility.Target, eo *entryOptions) error {
	ctx := cmd.Context()
	req := orchestrator.RenderRequest{
		Module:   module,
		Form:     form,
		Renderer: tui.Name,
		RecordID: eo.recordID,
		Options:  render.RenderOptions{Target: target},
	}

	var res orchestrator.SubmitResult
	for attempt := 1; ; attempt++ {
		out, err := a.orch.Render(ctx, req)
		if errors.Is(err, tui.ErrAborted) {
			return NewExitError(ExitFailure, "entry aborted")
		}
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("entry %s/%s", module, form), err)
		}

		var sub tui.Submission
		if err := json.Unmarshal(out.Body, &sub); err != nil {
			return WrapExitError(ExitFailure, "decode answers", err)
		}
		res, err = a.orch.Submit(ctx, orchestrator.SubmitRequest{
			Module: module,
			Form:   form,
			Values: sub.Values,
			Rows:   sub.Details,
		})
		if err != nil {
			return WrapExitError(ExitFailure, "submit", err)
		}
		if res.Valid() || attempt >= eo.attempts {
			break
		}

		a.logger.Debug("entry rejected, prompting again",
			zap.Int("attempt", attempt),
			zap.Int("violations", len(res.Errors)),
		)
		// The record, if any, is already merged into the answers.
		req.RecordID = ""
		req.Options.Values = res.Values
		req.Options.Rows = sub.Details
		for _, violation := range res.Errors {
			if violation.Row > 0 {
				// rows cannot be edited in place; enter them again
				req.Options.Rows = nil
				break
			}
		}
		req.Options.Errors = res.Errors.ByField()
	}
	return reportSubmit(cmd, opts, a, module, form, res)
}
