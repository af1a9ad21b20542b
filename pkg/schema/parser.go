package schema

import "context"

// Parser turns a Document into the shape-neutral IR. Implementations pick a
// strategy per document layout; callers never branch on the layout.
type Parser interface {
	Parse(ctx context.Context, doc Document) (SchemaIR, error)
}

// ParserOptions configures the default parser.
type ParserOptions struct {
	// LegacyModule names the module that receives a bare Form when the
	// document has no Modules node.
	LegacyModule string
}

// ParserOption mutates ParserOptions.
type ParserOption func(*ParserOptions)

// WithLegacyModule overrides the module name used for bare-Form documents.
func WithLegacyModule(name string) ParserOption {
	return func(opts *ParserOptions) {
		opts.LegacyModule = name
	}
}

// NewParserOptions applies options and returns the configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
