package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/components/records"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *RootOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the records HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("watch") {
				watch = a.cfg.Server.Watch
			}

			mux := http.NewServeMux()
			mount, err := records.RegisterRoutes(mux, a.orch,
				records.WithBasePath(a.cfg.Server.BasePath),
				records.WithLogger(a.logger),
			)
			if err != nil {
				return WrapExitError(ExitCommandError, "register routes", err)
			}

			if watch {
				if a.source.Kind() != schema.SourceKindFile {
					return NewExitError(ExitCommandError, "--watch needs a schema file, not "+string(a.source.Kind()))
				}
				w, err := a.orch.Watch(ctx, a.source.Location(), orchestrator.WithReloadHook(func(s *model.Schema, err error) {
					if err == nil {
						a.logger.Info("schema reloaded", zap.Int("modules", len(s.Modules())))
					}
				}))
				if err != nil {
					return WrapExitError(ExitCommandError, "watch schema", err)
				}
				defer w.Close()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			a.logger.Info("serving records API", zap.String("addr", addr), zap.String("mount", mount))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return WrapExitError(ExitFailure, "serve", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return WrapExitError(ExitFailure, "shutdown", err)
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the schema file when it changes")
	return cmd
}
