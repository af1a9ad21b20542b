package html

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-mdaform/pkg/aggregate"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/render"
)

// Views are handed to the engine as JSON-shaped data, so numbers are
// preformatted strings.
type formView struct {
	FormTemplate  string
	FieldTemplate string
	Theme         string
	Variant       string
	Style         string
	Stylesheet    string

	Name       string
	Module     string
	Action     string
	Method     string
	Submit     string
	Hidden     []render.HiddenField
	Errors     []string
	Fields     []fieldView
	HasDetails bool
	Columns    []columnView
	Rows       []rowView
	Total      string
}

type fieldView struct {
	ID        string
	Name      string
	Kind      string
	InputType string
	Value     string
	MaxLength string
	Required  bool
	Options   []optionView
	Errors    []string
}

type optionView struct {
	Value    string
	Selected bool
}

type columnView struct {
	Name  string
	Type  string
	Width string
}

type rowView struct {
	Number string
	Cells  []cellView
}

type cellView struct {
	Input    string
	Value    string
	ReadOnly bool
	Errors   []string
}

func buildView(form *model.Form, opts render.RenderOptions, submit string) formView {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "POST"
	}
	mapping := render.MapErrorKeys(form, opts.Errors)

	hidden := []render.HiddenField{render.Hidden("_module", opts.Module), render.Hidden("_form", form.Name())}
	if id := opts.Values["id"]; id != "" {
		hidden = append(hidden, render.Hidden("id", id))
	}
	hidden = append(hidden, opts.Hidden...)

	view := formView{
		Name:       form.Name(),
		Module:     opts.Module,
		Action:     opts.Action,
		Method:     method,
		Submit:     submit,
		Hidden:     render.SortedHiddenFields(hidden...),
		Errors:     mapping.Form,
		HasDetails: form.HasDetails(),
	}
	applyTheme(&view, opts.Theme)

	for i, field := range form.Fields() {
		if !field.Visibility.Visible(opts.Target) {
			continue
		}
		fv := fieldView{
			ID:        "mdaform-field-" + strconv.Itoa(i),
			Name:      field.Name,
			Kind:      string(field.Kind),
			InputType: inputType(field),
			Value:     opts.Values[field.Name],
			Required:  field.Required(),
			Errors:    mapping.FieldErrors(field.Name),
		}
		if field.Kind.Capabilities().HasMaxLength && field.MaxLength > 0 {
			fv.MaxLength = strconv.Itoa(field.MaxLength)
		}
		for _, opt := range field.Options {
			fv.Options = append(fv.Options, optionView{Value: opt, Selected: opt == fv.Value})
		}
		view.Fields = append(view.Fields, fv)
	}

	if !view.HasDetails {
		return view
	}

	columns := form.Columns()
	amountIdx := model.ColumnIndex(columns, model.RoleAmount)
	for _, col := range columns {
		cv := columnView{Name: col.Name, Type: col.Type}
		if col.Width > 0 {
			cv.Width = strconv.Itoa(col.Width)
		}
		view.Columns = append(view.Columns, cv)
	}
	rows := opts.Rows
	if len(rows) == 0 {
		rows = []model.DetailRow{make(model.DetailRow, len(columns))}
	}
	for r, row := range rows {
		rv := rowView{Number: strconv.Itoa(r + 1)}
		for c, col := range columns {
			rv.Cells = append(rv.Cells, cellView{
				Input:    "details[" + strconv.Itoa(r) + "][" + strconv.Itoa(c) + "]",
				Value:    row.Value(c),
				ReadOnly: c == amountIdx && aggregate.Locate(columns).Complete(),
				Errors:   mapping.CellErrors(r+1, col.Name),
			})
		}
		view.Rows = append(view.Rows, rv)
	}
	view.Total = aggregate.FormatAmount(opts.Total)
	return view
}

func inputType(field model.Field) string {
	switch field.EffectiveRole() {
	case model.RoleEmail:
		return "email"
	case model.RolePhone:
		return "tel"
	}
	return "text"
}

// applyTheme picks the form and field templates and the styling hooks from a
// resolved theme, falling back to the built-in templates.
func applyTheme(view *formView, cfg *theme.RendererConfig) {
	defaults := DefaultPartials()
	view.FormTemplate = defaults[PartialForm]
	view.FieldTemplate = defaults[PartialField]
	if cfg == nil {
		return
	}
	if p := strings.TrimSpace(cfg.Partials[PartialForm]); p != "" {
		view.FormTemplate = p
	}
	if p := strings.TrimSpace(cfg.Partials[PartialField]); p != "" {
		view.FieldTemplate = p
	}
	// Includes resolve against the including template's directory.
	if rel, err := filepath.Rel(filepath.Dir(view.FormTemplate), view.FieldTemplate); err == nil {
		view.FieldTemplate = filepath.ToSlash(rel)
	}
	view.Theme = cfg.Theme
	view.Variant = cfg.Variant
	view.Style = cssVarsStyle(cfg.CSSVars)
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(StylesheetAsset)
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
