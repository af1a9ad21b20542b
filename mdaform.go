// Package mdaform is the convenience entry point for metadata-driven forms:
// load a form metadata document, render its forms, and validate and store
// submissions.
package mdaform

import (
	"context"
	"io/fs"

	internalLoader "github.com/goliatone/go-mdaform/internal/schema/loader"
	internalParser "github.com/goliatone/go-mdaform/internal/schema/parser"
	"github.com/goliatone/go-mdaform/pkg/orchestrator"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/renderers/html"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

// RenderOptions describes per-request overrides that renderers use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// SubmitRequest aliases orchestrator.SubmitRequest.
type SubmitRequest = orchestrator.SubmitRequest

// SubmitResult aliases orchestrator.SubmitResult.
type SubmitResult = orchestrator.SubmitResult

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalLoader.New(schema.NewLoaderOptions(options...))
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...schema.ParserOption) schema.Parser {
	return internalParser.New(schema.NewParserOptions(options...))
}

// LoadFile builds an orchestrator for the schema document at path and loads
// it. Records are stored next to the working directory unless a repository
// option says otherwise.
func LoadFile(ctx context.Context, path string, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	opts := append([]orchestrator.Option{orchestrator.WithSource(schema.SourceFromFile(path))}, options...)
	o := orchestrator.New(opts...)
	if err := o.Err(); err != nil {
		return nil, err
	}
	if _, err := o.LoadSchema(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
