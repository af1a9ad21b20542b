package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/internal/config"
	"github.com/goliatone/go-mdaform/internal/logging"
	"github.com/goliatone/go-mdaform/internal/schema/loader"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/html"
	"github.com/goliatone/go-mdaform/pkg/renderers/tui"
	"github.com/goliatone/go-mdaform/pkg/schema"
	"github.com/goliatone/go-mdaform/pkg/store"
	"github.com/goliatone/go-mdaform/pkg/validation"
)

// remoteSchemaTimeout bounds fetching a schema document over HTTP.
const remoteSchemaTimeout = 30 * time.Second

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	orch   *orchestrator.Orchestrator
	source schema.Source

	closers []func() error
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.Schema != "" {
		cfg.Schema = opts.Schema
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openApp resolves config, builds the orchestrator and loads the schema.
func openApp(ctx context.Context, opts *RootOptions, tuiOptions ...tui.Option) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configure logging", err)
	}

	src, err := schema.ParseSource(cfg.Schema)
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "schema source", err)
	}

	a := &app{cfg: cfg, logger: logger, source: src}

	validatorOpts := []validation.Option{validation.WithLocale(cfg.Locale)}
	if cfg.StrictOptions {
		validatorOpts = append(validatorOpts, validation.WithStrictOptions())
	}
	validator := validation.New(validatorOpts...)

	var htmlOpts []html.Option
	var themes *theme.MemoryRegistry
	themeName := cfg.Theme.Name
	if cfg.Theme.Dir != "" {
		var manifest *theme.Manifest
		themes, manifest, err = loadThemes(cfg.Theme.Dir)
		if err != nil {
			_ = logger.Sync()
			return nil, WrapExitError(ExitCommandError, "load theme", err)
		}
		if themeName == "" {
			themeName = manifest.Name
		}
		htmlOpts = append(htmlOpts, html.WithThemeTemplates(os.DirFS(cfg.Theme.Dir)))
	}

	registry, err := newRegistry(validator, opts.driver, htmlOpts, tuiOptions...)
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "renderers", err)
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithLoader(loader.New(schema.NewLoaderOptions(schema.WithHTTPFallback(remoteSchemaTimeout)))),
		orchestrator.WithSource(src),
		orchestrator.WithValidator(validator),
		orchestrator.WithRegistry(registry),
		orchestrator.WithRepositoryFactory(a.repositoryFactory()),
	}
	if cfg.Sanitize {
		orchOpts = append(orchOpts, orchestrator.WithSanitizer(render.StripMarkup()))
	}
	if themes != nil {
		orchOpts = append(orchOpts, orchestrator.WithThemeProvider(themes, themeName, cfg.Theme.Variant))
	}

	a.orch = orchestrator.New(orchOpts...)
	if err := a.orch.Err(); err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "initialise", err)
	}
	if _, err := a.orch.LoadSchema(ctx); err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "load schema", err)
	}
	logger.Debug("schema ready",
		zap.String("source", src.Location()),
		zap.String("backend", cfg.Backend),
	)
	return a, nil
}

// loadThemes registers the theme manifest found in dir.
func loadThemes(dir string) (*theme.MemoryRegistry, *theme.Manifest, error) {
	manifest, err := theme.LoadDir(os.DirFS(dir), ".")
	if err != nil {
		return nil, nil, fmt.Errorf("theme manifest in %s: %w", dir, err)
	}
	themes := theme.NewRegistry()
	if err := themes.Register(manifest); err != nil {
		return nil, nil, err
	}
	return themes, manifest, nil
}

func newRegistry(validator *validation.Validator, driver tui.PromptDriver, htmlOpts []html.Option, tuiOptions ...tui.Option) (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}

	options := []tui.Option{tui.WithValidator(validator)}
	if driver != nil {
		options = append(options, tui.WithPromptDriver(driver))
	}
	options = append(options, tuiOptions...)
	if err := registry.Register(tui.New(options...)); err != nil {
		return nil, err
	}
	return registry, registry.SetDefault(html.Name)
}

// repositoryFactory picks the storage backend named by the config.
func (a *app) repositoryFactory() orchestrator.RepositoryFactory {
	return func(forms store.FormResolver) (store.Repository, error) {
		cfg := a.cfg
		storeOpts := []store.Option{
			store.WithFormResolver(forms),
			store.WithLogger(a.logger),
			store.WithIDGenerator(store.IDStrategy(cfg.IDStrategy)),
			store.WithCreatedBy(cfg.CreatedBy),
		}
		if cfg.InsertUnknownIDs {
			storeOpts = append(storeOpts, store.WithInsertUnknownIDs())
		}

		switch cfg.Backend {
		case config.BackendSQLite:
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
			db, err := store.OpenSQLite(cfg.SQLitePath, storeOpts...)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, db.Close)
			return db, nil
		default:
			return store.NewFileStore(cfg.DataDir, storeOpts...), nil
		}
	}
}

// Close releases the storage backend and flushes the logger.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// newFormatter builds an OutputFormatter bound to the command's streams.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
