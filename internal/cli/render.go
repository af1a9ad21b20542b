package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/html"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

type renderOptions struct {
	renderer string
	recordID string
	target   string
	action   string
	output   string
	theme    string
	variant  string
}

func newRenderCommand(opts *RootOptions) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render MODULE FORM",
		Short: "Render a form, optionally seeded from a stored record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := visibility.ParseTarget(ro.target)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid target", err)
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.orch.Render(cmd.Context(), orchestrator.RenderRequest{
				Module:       args[0],
				Form:         args[1],
				Renderer:     ro.renderer,
				RecordID:     ro.recordID,
				ThemeName:    ro.theme,
				ThemeVariant: ro.variant,
				Options: render.RenderOptions{
					Action: ro.action,
					Target: target,
				},
			})
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("render %s/%s", args[0], args[1]), err)
			}
			return writeOutput(cmd, ro.output, out.Body)
		},
	}

	cmd.Flags().StringVar(&ro.renderer, "renderer", html.Name, "renderer name")
	cmd.Flags().StringVar(&ro.recordID, "id", "", "seed the form from this record")
	cmd.Flags().StringVar(&ro.target, "target", "desktop", "device class (desktop|tablet|mobile)")
	cmd.Flags().StringVar(&ro.action, "action", "", "form action URL")
	cmd.Flags().StringVar(&ro.theme, "theme", "", "theme name (defaults to the configured theme)")
	cmd.Flags().StringVar(&ro.variant, "variant", "", "theme variant")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
