package model

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/schema"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

// ruleEnabled is the only Validation sub-element text that turns a rule on.
const ruleEnabled = "1"

// Builder converts the parser IR into an immutable Schema.
type Builder struct {
	logger *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger receives warnings about attributes the builder had to ignore.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Builder.
func New(options ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build interprets every module, form and field in ir.
func (b *Builder) Build(ir schema.SchemaIR) (*Schema, error) {
	modules := make([]*Module, 0, len(ir.Modules))
	for _, mod := range ir.Modules {
		name := strings.TrimSpace(mod.Name)
		if name == "" {
			return nil, &SchemaFormatError{Reason: "module name is required"}
		}
		forms := make([]*Form, 0, len(mod.Forms))
		for _, formIR := range mod.Forms {
			form, err := b.buildForm(name, formIR)
			if err != nil {
				return nil, err
			}
			forms = append(forms, form)
		}
		modules = append(modules, NewModule(name, forms))
	}
	return NewSchema(modules), nil
}

func (b *Builder) buildForm(module string, ir schema.FormIR) (*Form, error) {
	name := strings.TrimSpace(ir.Name)
	if name == "" {
		return nil, &SchemaFormatError{Module: module, Reason: "form name is required"}
	}

	fields := make([]Field, 0, len(ir.Fields))
	for _, fieldIR := range ir.Fields {
		field, err := b.buildField(fieldIR)
		if err != nil {
			if sfe, ok := err.(*SchemaFormatError); ok {
				sfe.Module = module
				sfe.Form = name
			}
			return nil, err
		}
		fields = append(fields, field)
	}

	columns := make([]DetailColumn, 0, len(ir.Columns))
	for _, colIR := range ir.Columns {
		column, err := buildColumn(colIR)
		if err != nil {
			return nil, &SchemaFormatError{Module: module, Form: name, Reason: "detail column", Err: err}
		}
		columns = append(columns, column)
	}

	return NewForm(name, fields, columns), nil
}

func (b *Builder) buildField(ir schema.FieldIR) (Field, error) {
	name, _ := ir.Attr("name")
	name = strings.TrimSpace(name)
	if name == "" {
		return Field{}, &SchemaFormatError{Reason: fmt.Sprintf("%s element has no name", ir.Tag)}
	}

	kind, err := ParseFieldKind(ir.Tag)
	if err != nil {
		return Field{}, &SchemaFormatError{Field: name, Reason: "unrecognised kind", Err: err}
	}

	field := Field{
		Name:     name,
		Kind:     kind,
		Geometry: DefaultGeometry,
	}

	// Geometry is layout only; a bad value keeps the default.
	geometry := []struct {
		attr string
		dst  *int
	}{
		{"Left", &field.Geometry.Left},
		{"Top", &field.Geometry.Top},
		{"Width", &field.Geometry.Width},
		{"Height", &field.Geometry.Height},
	}
	for _, g := range geometry {
		if err := intAttr(ir, g.attr, g.dst); err != nil {
			b.logger.Warn("model: ignoring field geometry",
				zap.String("field", name),
				zap.String("attr", g.attr),
				zap.Error(err),
			)
		}
	}

	mask, _ := ir.Attr("VisibleExt")
	field.Visibility, err = visibility.Parse(strings.TrimSpace(mask))
	if err != nil {
		return Field{}, &SchemaFormatError{Field: name, Reason: "VisibleExt", Err: err}
	}

	caps := kind.Capabilities()
	if caps.HasMaxLength {
		field.MaxLength = kind.DefaultMaxLength()
		if err := intAttr(ir, "Length", &field.MaxLength); err != nil {
			return Field{}, &SchemaFormatError{Field: name, Reason: "Length", Err: err}
		}
		if field.MaxLength < 0 {
			return Field{}, &SchemaFormatError{Field: name, Reason: "Length must not be negative"}
		}
	}
	if caps.HasOptions {
		field.Options = make([]string, 0, len(ir.Options))
		field.Options = append(field.Options, ir.Options...)
	}

	if ir.Validation != nil {
		field.Validation = &ValidationSpec{
			Required: ir.Validation.Required == ruleEnabled,
			Numeric:  ir.Validation.Number == ruleEnabled,
		}
	}

	if raw, ok := ir.Attr("Role"); ok {
		role, err := ParseRole(raw)
		if err != nil {
			return Field{}, &SchemaFormatError{Field: name, Reason: "Role", Err: err}
		}
		field.Role = role
	}

	return field, nil
}

func buildColumn(ir schema.ColumnIR) (DetailColumn, error) {
	name := strings.TrimSpace(ir.Name)
	if name == "" {
		return DetailColumn{}, fmt.Errorf("column name is required")
	}
	column := DetailColumn{Name: name, Type: strings.TrimSpace(ir.Type)}
	if w := strings.TrimSpace(ir.Width); w != "" {
		width, err := strconv.Atoi(w)
		if err != nil {
			return DetailColumn{}, fmt.Errorf("column %q width %q is not an integer", name, ir.Width)
		}
		column.Width = width
	}
	role, err := ParseRole(ir.Role)
	if err != nil {
		return DetailColumn{}, fmt.Errorf("column %q: %w", name, err)
	}
	column.Role = role
	return column, nil
}

func intAttr(ir schema.FieldIR, name string, dst *int) error {
	raw, ok := ir.Attr(name)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s %q is not an integer", name, raw)
	}
	*dst = v
	return nil
}
