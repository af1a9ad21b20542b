package model

import (
	"errors"
	"strings"
)

// ErrSchemaFormat is matched by every SchemaFormatError through errors.Is.
var ErrSchemaFormat = errors.New("schema format error")

// SchemaFormatError reports a document that lacks a structurally required node
// or declares something the interpreter cannot understand. Module, Form and
// Field locate the problem when known.
type SchemaFormatError struct {
	Module string
	Form   string
	Field  string
	Reason string
	Err    error
}

func (e *SchemaFormatError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	if loc := e.location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		if e.Reason != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SchemaFormatError) Unwrap() error {
	return e.Err
}

// Is lets callers test with errors.Is(err, ErrSchemaFormat).
func (e *SchemaFormatError) Is(target error) bool {
	return target == ErrSchemaFormat
}

func (e *SchemaFormatError) location() string {
	parts := make([]string, 0, 3)
	if e.Module != "" {
		parts = append(parts, "module "+quote(e.Module))
	}
	if e.Form != "" {
		parts = append(parts, "form "+quote(e.Form))
	}
	if e.Field != "" {
		parts = append(parts, "field "+quote(e.Field))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	return `"` + s + `"`
}
