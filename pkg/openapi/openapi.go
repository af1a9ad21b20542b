package openapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// NumericPattern mirrors the numeric rule: a decimal or scientific literal.
const NumericPattern = `^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?\s*$`

// Options configures document generation.
type Options struct {
	Title    string
	Version  string
	BasePath string
}

// Option mutates Options.
type Option func(*Options)

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithBasePath prefixes every path. It must match the base the records
// component is mounted under.
func WithBasePath(base string) Option {
	return func(o *Options) {
		o.BasePath = base
	}
}

func newOptions(options ...Option) Options {
	opts := Options{Title: "mdaform records", Version: "1.0.0", BasePath: "/api"}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	opts.BasePath = "/" + strings.Trim(strings.TrimSpace(opts.BasePath), "/")
	if opts.BasePath == "/" {
		opts.BasePath = ""
	}
	return opts
}

// Generate builds and validates the document for schema.
func Generate(ctx context.Context, schema *model.Schema, options ...Option) (*openapi3.T, error) {
	if schema == nil {
		return nil, fmt.Errorf("openapi: schema is nil")
	}
	opts := newOptions(options...)

	g := &generator{
		opts: opts,
		doc: &openapi3.T{
			OpenAPI: "3.0.3",
			Info:    &openapi3.Info{Title: opts.Title, Version: opts.Version},
			Paths:   openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas: openapi3.Schemas{},
			},
		},
		names: make(map[string]struct{}),
	}
	g.sharedSchemas()
	g.doc.AddOperation(opts.BasePath+"/schema", http.MethodGet, &openapi3.Operation{
		OperationID: "getSchema",
		Summary:     "List modules and forms",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Loaded schema", openapi3.NewObjectSchema())),
		),
	})
	for _, module := range schema.Modules() {
		for _, form := range module.Forms() {
			g.form(module.Name(), form)
		}
	}

	if err := g.doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return g.doc, nil
}

type generator struct {
	opts  Options
	doc   *openapi3.T
	names map[string]struct{}
}

const (
	validationErrorsName = "ValidationErrors"
	validationErrorName  = "ValidationError"
)

func (g *generator) sharedSchemas() {
	item := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("row", openapi3.NewIntegerSchema()).
		WithProperty("column", openapi3.NewStringSchema()).
		WithProperty("rule", openapi3.NewStringSchema().WithEnum(
			"required", "numeric", "maxLength", "email", "phone", "option", "minRows",
		)).
		WithProperty("message", openapi3.NewStringSchema()).
		WithRequired([]string{"rule", "message"})
	g.doc.Components.Schemas[validationErrorName] = openapi3.NewSchemaRef("", item)

	list := openapi3.NewObjectSchema().
		WithPropertyRef("errors", arrayOf(ref(validationErrorName, item))).
		WithRequired([]string{"errors"})
	g.doc.Components.Schemas[validationErrorsName] = openapi3.NewSchemaRef("", list)
}

func (g *generator) form(module string, form *model.Form) {
	name := g.componentName(module, form.Name())
	submission := submissionSchema(form)
	record := recordSchema(form)
	g.doc.Components.Schemas[name+"Submission"] = openapi3.NewSchemaRef("", submission)
	g.doc.Components.Schemas[name+"Record"] = openapi3.NewSchemaRef("", record)
	recordRef := ref(name+"Record", record)
	errorsRef := ref(validationErrorsName, g.doc.Components.Schemas[validationErrorsName].Value)

	base := g.opts.BasePath + "/" + url.PathEscape(module) + "/" + url.PathEscape(form.Name())
	tags := []string{module}

	g.doc.AddOperation(base, http.MethodGet, &openapi3.Operation{
		OperationID: "getForm" + name,
		Summary:     fmt.Sprintf("Describe form %s", form.Name()),
		Tags:        tags,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Form definition", openapi3.NewObjectSchema())),
			openapi3.WithStatus(http.StatusNotFound, textResponse("Unknown module or form")),
		),
	})

	listBody := openapi3.NewObjectSchema().WithPropertyRef("data", arrayOf(recordRef))
	g.doc.AddOperation(base+"/records", http.MethodGet, &openapi3.Operation{
		OperationID: "listRecords" + name,
		Summary:     fmt.Sprintf("List %s records", form.Name()),
		Tags:        tags,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Stored records", listBody)),
		),
	})

	saved := openapi3.NewObjectSchema().
		WithPropertyRef("data", recordRef).
		WithProperty("total", openapi3.NewFloat64Schema())
	g.doc.AddOperation(base+"/records", http.MethodPost, &openapi3.Operation{
		OperationID: "submitRecord" + name,
		Summary:     fmt.Sprintf("Validate and save a %s record", form.Name()),
		Description: "Records carrying an id replace the stored record in place; records without one are appended.",
		Tags:        tags,
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchemaRef(ref(name+"Submission", submission)),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Record updated", saved)),
			openapi3.WithStatus(http.StatusCreated, jsonResponse("Record created", saved)),
			openapi3.WithStatus(http.StatusBadRequest, textResponse("Malformed request body")),
			openapi3.WithStatus(http.StatusNotFound, textResponse("Unknown form or record id")),
			openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Validation failed").
					WithJSONSchemaRef(errorsRef),
			}),
		),
	})

	g.doc.AddOperation(base+"/records/{id}", http.MethodDelete, &openapi3.Operation{
		OperationID: "deleteRecord" + name,
		Summary:     fmt.Sprintf("Delete a %s record", form.Name()),
		Tags:        tags,
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("Record deleted"),
			}),
			openapi3.WithStatus(http.StatusNotFound, textResponse("No record with that id")),
		),
	})

	g.doc.AddOperation(base+"/export", http.MethodGet, &openapi3.Operation{
		OperationID: "exportRecords" + name,
		Summary:     fmt.Sprintf("Export %s records as CSV", form.Name()),
		Tags:        tags,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, contentResponse("CSV export", "text/csv")),
		),
	})

	g.doc.AddOperation(base+"/render", http.MethodGet, &openapi3.Operation{
		OperationID: "renderForm" + name,
		Summary:     fmt.Sprintf("Render %s as HTML", form.Name()),
		Tags:        tags,
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewQueryParameter("id").
				WithDescription("Prefill the form from a stored record").
				WithSchema(openapi3.NewStringSchema())},
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, contentResponse("Rendered form", "text/html")),
			openapi3.WithStatus(http.StatusNotFound, textResponse("Unknown module or form")),
		),
	})
}

// componentName maps a module/form pair onto the identifier alphabet
// components allow, suffixing a counter on collisions.
func (g *generator) componentName(module, form string) string {
	base := identifier(module) + "." + identifier(form)
	name := base
	for i := 2; ; i++ {
		if _, taken := g.names[name]; !taken {
			break
		}
		name = base + "-" + strconv.Itoa(i)
	}
	g.names[name] = struct{}{}
	return name
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func fieldSchema(field model.Field) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	if field.Kind.Capabilities().HasMaxLength && field.MaxLength > 0 {
		s.WithMaxLength(int64(field.MaxLength))
	}
	if field.Kind.Capabilities().HasOptions && len(field.Options) > 0 {
		values := make([]any, len(field.Options))
		for i, opt := range field.Options {
			values[i] = opt
		}
		s.WithEnum(values...)
	}
	if field.Numeric() {
		s.WithPattern(NumericPattern)
	}
	switch field.EffectiveRole() {
	case model.RoleEmail:
		s.WithFormat("email")
	case model.RolePhone:
		s.WithPattern(`^[0-9]{11}$`)
	}
	return s
}

func detailsSchema(form *model.Form) *openapi3.Schema {
	row := openapi3.NewObjectSchema()
	for _, col := range form.Columns() {
		row.WithProperty(col.Name, openapi3.NewStringSchema())
	}
	return openapi3.NewArraySchema().WithItems(row).WithMinItems(1)
}

func submissionSchema(form *model.Form) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema())
	var required []string
	for _, field := range form.Fields() {
		s.WithProperty(field.Name, fieldSchema(field))
		if field.Required() && field.Visible() {
			required = append(required, field.Name)
		}
	}
	if form.HasDetails() {
		s.WithProperty("details", detailsSchema(form))
		required = append(required, "details")
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}
	return s
}

func recordSchema(form *model.Form) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("createdAt", openapi3.NewStringSchema()).
		WithProperty("createdBy", openapi3.NewStringSchema())
	for _, field := range form.Fields() {
		s.WithProperty(field.Name, openapi3.NewStringSchema())
	}
	if form.HasDetails() {
		s.WithProperty("details", detailsSchema(form))
	}
	return s.WithRequired([]string{"id", "createdAt"})
}

func ref(name string, value *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, value)
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	s := openapi3.NewArraySchema()
	s.Items = items
	return &openapi3.SchemaRef{Value: s}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema),
	}
}

func contentResponse(description, mediaType string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{mediaType})),
	}
}

func textResponse(description string) *openapi3.ResponseRef {
	return contentResponse(description, "text/plain")
}
