package render

import (
	"strings"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/validation"
)

// ErrorMapping splits validation feedback by where a renderer shows it: next
// to a master field, inside a detail cell, or above the form.
type ErrorMapping struct {
	Fields map[string][]string
	// Cells is keyed by 1-based row number, then column name.
	Cells map[int]map[string][]string
	Form  []string
}

// FieldErrors returns the messages for a master field.
func (m ErrorMapping) FieldErrors(name string) []string {
	return m.Fields[name]
}

// CellErrors returns the messages for a detail cell.
func (m ErrorMapping) CellErrors(row int, column string) []string {
	return m.Cells[row][column]
}

// MapErrors places validation errors against the form. Errors naming a field
// the form does not declare fall back to form level so no message is lost.
func MapErrors(form *model.Form, errs validation.Errors) ErrorMapping {
	var mapping ErrorMapping
	for _, err := range errs {
		switch {
		case err.Field != "" && form != nil && hasField(form, err.Field):
			if mapping.Fields == nil {
				mapping.Fields = make(map[string][]string)
			}
			mapping.Fields[err.Field] = append(mapping.Fields[err.Field], err.Message)
		case err.Row > 0 && err.Column != "":
			if mapping.Cells == nil {
				mapping.Cells = make(map[int]map[string][]string)
			}
			if mapping.Cells[err.Row] == nil {
				mapping.Cells[err.Row] = make(map[string][]string)
			}
			mapping.Cells[err.Row][err.Column] = append(mapping.Cells[err.Row][err.Column], err.Message)
		default:
			mapping.Form = append(mapping.Form, err.Message)
		}
	}
	for name, messages := range mapping.Fields {
		mapping.Fields[name] = normalizeMessages(messages)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MapErrorKeys converts RenderOptions.Errors (keyed like
// validation.Errors.ByField) back into a mapping. Keys of the form
// "details[N].Column" land in Cells.
func MapErrorKeys(form *model.Form, payload map[string][]string) ErrorMapping {
	errs := make(validation.Errors, 0, len(payload))
	for key, messages := range payload {
		row, column, isCell := parseCellKey(key)
		for _, message := range messages {
			switch {
			case isCell:
				errs = append(errs, validation.ValidationError{Row: row, Column: column, Message: message})
			case key == validation.DetailsKey || key == "":
				errs = append(errs, validation.ValidationError{Message: message})
			default:
				errs = append(errs, validation.ValidationError{Field: key, Message: message})
			}
		}
	}
	return MapErrors(form, errs)
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func hasField(form *model.Form, name string) bool {
	_, ok := form.Field(name)
	return ok
}

func parseCellKey(key string) (int, string, bool) {
	rest, ok := strings.CutPrefix(key, validation.DetailsKey+"[")
	if !ok {
		return 0, "", false
	}
	idx, column, ok := strings.Cut(rest, "].")
	if !ok || column == "" {
		return 0, "", false
	}
	row := 0
	for _, r := range idx {
		if r < '0' || r > '9' {
			return 0, "", false
		}
		row = row*10 + int(r-'0')
	}
	if row == 0 {
		return 0, "", false
	}
	return row, column, true
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
