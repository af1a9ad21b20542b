package model

import (
	"strings"

	"github.com/goliatone/go-mdaform/pkg/visibility"
)

// Geometry carries layout hints from the document. The core never reads it;
// renderers may.
type Geometry struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultGeometry matches the placement used when the document omits it.
var DefaultGeometry = Geometry{Left: 10, Top: 10, Width: 200, Height: 30}

// ValidationSpec lists the declarative rules attached to a field.
type ValidationSpec struct {
	Required bool `json:"required,omitempty"`
	Numeric  bool `json:"numeric,omitempty"`
}

// Field is one input declared inside a form's FieldList.
type Field struct {
	Name       string          `json:"name"`
	Kind       FieldKind       `json:"kind"`
	MaxLength  int             `json:"maxLength,omitempty"`
	Options    []string        `json:"options,omitempty"`
	Visibility visibility.Mask `json:"visibility"`
	Validation *ValidationSpec `json:"validation,omitempty"`
	Role       Role            `json:"role,omitempty"`
	Geometry   Geometry        `json:"geometry"`
}

// Required reports whether the field declares the required rule.
func (f Field) Required() bool {
	return f.Validation != nil && f.Validation.Required
}

// Numeric reports whether the field declares the numeric rule.
func (f Field) Numeric() bool {
	return f.Validation != nil && f.Validation.Numeric
}

// Visible reports whether the field is in scope for desktop, the only target
// evaluated by validation.
func (f Field) Visible() bool {
	return f.Visibility.Visible(visibility.Desktop)
}

// EffectiveRole returns the declared role or one inferred from the name.
func (f Field) EffectiveRole() Role {
	if f.Role != RoleNone {
		return f.Role
	}
	return InferFieldRole(f.Name)
}

// Roles returns the declared role, or every role inferred from the name.
func (f Field) Roles() []Role {
	if f.Role != RoleNone {
		return []Role{f.Role}
	}
	return InferFieldRoles(f.Name)
}

func (f Field) clone() Field {
	out := f
	if f.Options != nil {
		out.Options = make([]string, len(f.Options))
		copy(out.Options, f.Options)
	}
	if f.Validation != nil {
		spec := *f.Validation
		out.Validation = &spec
	}
	return out
}

// DetailColumn declares one column of a line-item table. Column order defines
// tuple positions in stored rows.
type DetailColumn struct {
	Name  string `json:"name"`
	Width int    `json:"width,omitempty"`
	Type  string `json:"type,omitempty"`
	Role  Role   `json:"role,omitempty"`
}

// EffectiveRole returns the declared role or one inferred from the name.
func (c DetailColumn) EffectiveRole() Role {
	if c.Role != RoleNone {
		return c.Role
	}
	return InferColumnRole(c.Name)
}

// DetailRow is one line item, positionally aligned with the form's columns.
type DetailRow []string

// Clone returns an independent copy of the row.
func (r DetailRow) Clone() DetailRow {
	if r == nil {
		return nil
	}
	return append(DetailRow(nil), r...)
}

// Value returns the cell at idx or "" when the row is short.
func (r DetailRow) Value(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

// Empty reports whether every cell is blank after trimming.
func (r DetailRow) Empty() bool {
	for _, cell := range r {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// CloneRows deep copies a row list.
func CloneRows(rows []DetailRow) []DetailRow {
	if rows == nil {
		return nil
	}
	out := make([]DetailRow, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out
}

// ColumnIndex returns the position of the first column carrying role, or -1.
func ColumnIndex(columns []DetailColumn, role Role) int {
	for i, col := range columns {
		if col.EffectiveRole() == role {
			return i
		}
	}
	return -1
}
