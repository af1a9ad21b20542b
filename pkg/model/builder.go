package model

import (
	"github.com/goliatone/go-mdaform/internal/model"
	"github.com/goliatone/go-mdaform/pkg/schema"
)

// Builder interprets parser IR into a Schema.
type Builder interface {
	Build(ir schema.SchemaIR) (*Schema, error)
}

// BuilderOption configures the built-in Builder.
type BuilderOption = model.Option

// WithBuilderLogger routes builder warnings, such as ignored geometry, to
// logger.
var WithBuilderLogger = model.WithLogger

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	return model.New(options...)
}
