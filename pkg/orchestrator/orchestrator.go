package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-mdaform/internal/schema/loader"
	internalParser "github.com/goliatone/go-mdaform/internal/schema/parser"
	"github.com/goliatone/go-mdaform/pkg/aggregate"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/html"
	"github.com/goliatone/go-mdaform/pkg/schema"
	"github.com/goliatone/go-mdaform/pkg/store"
	"github.com/goliatone/go-mdaform/pkg/validation"
)

// ErrNoSchema is returned by operations that need a schema before one was
// loaded or supplied.
var ErrNoSchema = errors.New("orchestrator: no schema loaded")

// RepositoryFactory builds a repository bound to the orchestrator's live
// schema, so detail columns follow reloads.
type RepositoryFactory func(forms store.FormResolver) (store.Repository, error)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom schema parser.
func WithParser(parser schema.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom schema model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithSource sets where LoadSchema and Reload read the schema document from.
func WithSource(src schema.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithSchema installs an already built schema.
func WithSchema(s *model.Schema) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.schema.Store(s)
		}
	}
}

// WithRepository sets the record store.
func WithRepository(repo store.Repository) Option {
	return func(o *Orchestrator) {
		o.repo = repo
	}
}

// WithRepositoryFactory builds the record store once the orchestrator exists,
// handing it a resolver over the current schema.
func WithRepositoryFactory(factory RepositoryFactory) Option {
	return func(o *Orchestrator) {
		o.repoFactory = factory
	}
}

// WithValidator overrides the validation engine, for example to change the
// message locale.
func WithValidator(v *validation.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

// WithSanitizer cleans every submitted value before validation.
func WithSanitizer(s render.Sanitizer) Option {
	return func(o *Orchestrator) {
		o.sanitizer = s
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithThemeSelector resolves theme and variant choices ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeProvider builds a go-theme selector over provider with the given
// defaults.
func WithThemeProvider(provider theme.ThemeProvider, defaultTheme, defaultVariant string) Option {
	return func(o *Orchestrator) {
		if provider == nil {
			return
		}
		o.themeSelector = theme.Selector{
			Registry:       provider,
			DefaultTheme:   defaultTheme,
			DefaultVariant: defaultVariant,
		}
	}
}

// WithThemeFallbacks overrides the partials used when a theme leaves a key
// unset.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		o.themeFallbacks = make(map[string]string, len(fallbacks))
		for key, value := range fallbacks {
			o.themeFallbacks[key] = value
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates schema loading, submissions, record access and
// rendering. The schema is swapped atomically on reload; everything else is
// fixed at construction.
type Orchestrator struct {
	loader      schema.Loader
	parser      schema.Parser
	builder     model.Builder
	source      schema.Source
	schema      atomic.Pointer[model.Schema]
	repo        store.Repository
	repoFactory RepositoryFactory
	validator   *validation.Validator
	sanitizer   render.Sanitizer
	registry    *render.Registry
	logger      *zap.Logger

	themeSelector  theme.ThemeSelector
	themeFallbacks map[string]string

	initialiseErr error
}

// New constructs an Orchestrator. Missing collaborators default to the
// built-in loader and parser, the English validator, a JSON file store in the
// working directory and a registry holding the HTML renderer.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.loader == nil {
		o.loader = internalLoader.New(schema.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(schema.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder(model.WithBuilderLogger(o.logger))
	}
	if o.validator == nil {
		o.validator = validation.New()
	}
	if o.repo == nil && o.repoFactory != nil {
		repo, err := o.repoFactory(o.ResolveForm)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: build repository: %w", err)
		}
		o.repo = repo
	}
	if o.repo == nil {
		o.repo = store.NewFileStore(".", store.WithFormResolver(o.ResolveForm), store.WithLogger(o.logger))
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = defaultThemeFallbacks()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
}

// Err reports a construction failure, if any. Every operation also returns it.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Registry exposes the renderer registry so callers can register more
// renderers.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Repository exposes the configured record store.
func (o *Orchestrator) Repository() store.Repository {
	return o.repo
}

// LoadSchema reads the configured source, builds the schema and makes it
// current.
func (o *Orchestrator) LoadSchema(ctx context.Context) (*model.Schema, error) {
	if o.source == nil {
		return nil, errors.New("orchestrator: schema source is required")
	}
	return o.Load(ctx, o.source)
}

// Load reads src, builds the schema and makes it current. A failed load keeps
// the previous schema.
func (o *Orchestrator) Load(ctx context.Context, src schema.Source) (*model.Schema, error) {
	if err := o.check(ctx); err != nil {
		return nil, err
	}
	doc, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return o.LoadDocument(ctx, doc)
}

// LoadDocument parses an already loaded document and makes it current.
func (o *Orchestrator) LoadDocument(ctx context.Context, doc schema.Document) (*model.Schema, error) {
	if err := o.check(ctx); err != nil {
		return nil, err
	}
	ir, err := o.parser.Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse schema: %w", err)
	}
	built, err := o.builder.Build(ir)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build schema: %w", err)
	}
	o.schema.Store(built)
	o.logger.Info("schema loaded",
		zap.String("source", doc.Location()),
		zap.Int("modules", len(built.Modules())),
	)
	return built, nil
}

// Schema returns the current schema, or nil before the first load.
func (o *Orchestrator) Schema() *model.Schema {
	return o.schema.Load()
}

// Form resolves a form definition from the current schema.
func (o *Orchestrator) Form(module, form string) (*model.Form, error) {
	current := o.schema.Load()
	if current == nil {
		return nil, ErrNoSchema
	}
	return current.Form(module, form)
}

// ResolveForm adapts Form to store.FormResolver.
func (o *Orchestrator) ResolveForm(module, form string) (*model.Form, bool) {
	f, err := o.Form(module, form)
	return f, err == nil
}

// SubmitRequest carries one submission of a form.
type SubmitRequest struct {
	Module string
	Form   string
	// Values holds master field values keyed by field name. A non-empty "id"
	// updates that record in place.
	Values map[string]string
	Rows   []model.DetailRow
}

// SubmitResult describes the outcome of Submit. Errors is non-empty when the
// submission was rejected; nothing is stored in that case.
type SubmitResult struct {
	Record  store.Record
	Errors  validation.Errors
	Values  map[string]string
	Rows    []model.DetailRow
	Total   float64
	Created bool
}

// Valid reports whether the submission passed validation.
func (r SubmitResult) Valid() bool {
	return len(r.Errors) == 0
}

// Submit sanitizes values, recomputes detail amounts, validates and, on
// success, upserts the record. Validation failures are returned as data.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := o.check(ctx); err != nil {
		return SubmitResult{}, err
	}
	form, err := o.Form(req.Module, req.Form)
	if err != nil {
		return SubmitResult{}, err
	}

	values := render.SanitizeValues(o.sanitizer, req.Values)
	if values == nil {
		values = map[string]string{}
	}
	result := SubmitResult{Values: values}
	if form.HasDetails() {
		result.Rows, result.Total = aggregate.Recompute(form.Columns(), req.Rows)
	}

	if errs := o.validator.Validate(form, values, result.Rows); len(errs) > 0 {
		o.logger.Debug("submission rejected",
			zap.String("module", req.Module),
			zap.String("form", req.Form),
			zap.Int("violations", len(errs)),
		)
		result.Errors = errs
		return result, nil
	}

	id := strings.TrimSpace(values[store.KeyID])
	record, err := o.repo.Upsert(ctx, req.Module, req.Form, values, result.Rows)
	if err != nil {
		return result, err
	}
	result.Record = record
	result.Created = id == "" || record.ID != id
	o.logger.Info("record saved",
		zap.String("module", req.Module),
		zap.String("form", req.Form),
		zap.String("id", record.ID),
		zap.Bool("created", result.Created),
	)
	return result, nil
}

// Records lists a form's stored records.
func (o *Orchestrator) Records(ctx context.Context, module, form string) ([]store.Record, error) {
	if err := o.check(ctx); err != nil {
		return nil, err
	}
	if _, err := o.Form(module, form); err != nil {
		return nil, err
	}
	return o.repo.List(ctx, module, form)
}

// Record finds one stored record by id.
func (o *Orchestrator) Record(ctx context.Context, module, form, id string) (store.Record, error) {
	records, err := o.Records(ctx, module, form)
	if err != nil {
		return store.Record{}, err
	}
	for _, record := range records {
		if record.ID == id {
			return record, nil
		}
	}
	return store.Record{}, fmt.Errorf("orchestrator: %w: id %q", store.ErrRecordNotFound, id)
}

// Delete removes a record and reports whether it existed.
func (o *Orchestrator) Delete(ctx context.Context, module, form, id string) (bool, error) {
	if err := o.check(ctx); err != nil {
		return false, err
	}
	if _, err := o.Form(module, form); err != nil {
		return false, err
	}
	removed, err := o.repo.Delete(ctx, module, form, id)
	if err != nil {
		return false, err
	}
	if removed {
		o.logger.Info("record deleted",
			zap.String("module", module),
			zap.String("form", form),
			zap.String("id", id),
		)
	}
	return removed, nil
}

// Export writes a form's records as CSV.
func (o *Orchestrator) Export(ctx context.Context, w io.Writer, module, form string) error {
	f, err := o.Form(module, form)
	if err != nil {
		return err
	}
	records, err := o.Records(ctx, module, form)
	if err != nil {
		return err
	}
	return store.ExportCSV(w, records, f)
}

// RenderRequest selects a form and renderer.
type RenderRequest struct {
	Module string
	Form   string
	// Renderer names the renderer; empty uses the registry default.
	Renderer string
	// RecordID, when set, seeds values and rows from that stored record.
	RecordID string
	// ThemeName and ThemeVariant pick a theme when a selector is configured;
	// empty values use the selector defaults.
	ThemeName    string
	ThemeVariant string
	Options      render.RenderOptions
}

// Output is a rendered form with its media type.
type Output struct {
	Body        []byte
	ContentType string
}

// Render resolves the form and renderer and renders. Detail amounts and the
// total are recomputed from the seeded rows first.
func (o *Orchestrator) Render(ctx context.Context, req RenderRequest) (Output, error) {
	if err := o.check(ctx); err != nil {
		return Output{}, err
	}
	form, err := o.Form(req.Module, req.Form)
	if err != nil {
		return Output{}, err
	}
	renderer, err := o.registry.Resolve(req.Renderer)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: %w", err)
	}

	opts := req.Options
	if opts.Module == "" {
		opts.Module = req.Module
	}
	if req.RecordID != "" {
		record, err := o.Record(ctx, req.Module, req.Form, req.RecordID)
		if err != nil {
			return Output{}, err
		}
		opts.Values = recordValues(record, opts.Values)
		if opts.Rows == nil {
			opts.Rows = record.Details
		}
	}
	if form.HasDetails() {
		opts.Rows, opts.Total = aggregate.Recompute(form.Columns(), opts.Rows)
	}
	if opts.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return Output{}, err
		}
		opts.Theme = cfg
	}

	body, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return Output{}, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return Output{Body: body, ContentType: renderer.ContentType()}, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil {
		return nil, nil
	}
	cfg := selection.RendererTheme(o.themeFallbacks)
	return &cfg, nil
}

func defaultThemeFallbacks() map[string]string {
	return html.DefaultPartials()
}

// recordValues merges a stored record under explicit overrides.
func recordValues(record store.Record, overrides map[string]string) map[string]string {
	values := make(map[string]string, len(record.Fields)+len(overrides)+1)
	for k, v := range record.Fields {
		values[k] = v
	}
	values[store.KeyID] = record.ID
	for k, v := range overrides {
		values[k] = v
	}
	return values
}

func (o *Orchestrator) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.initialiseErr
}
