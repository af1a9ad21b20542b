// Package tui collects a form interactively in the terminal. Fields are
// prompted in document order, each answer is checked by the validation engine
// as it is typed, and detail rows are entered one at a time with amounts and
// the running total recomputed after every row.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-mdaform/pkg/aggregate"
	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/render"
	"github.com/goliatone/go-mdaform/pkg/validation"
)

// Name is the registry identifier of this renderer.
const Name = "tui"

const noneOption = "(none)"

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	validator    *validation.Validator
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// Submission is the JSON document Render produces.
type Submission struct {
	Values  map[string]string `json:"values"`
	Details []model.DetailRow `json:"details,omitempty"`
	Total   *float64          `json:"total,omitempty"`
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       NewSurveyDriver(),
		outputFormat: OutputFormatJSON,
		validator:    validation.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible field and, when the form has a detail
// table, for line items. Values and rows in opts seed the prompts.
func (r *Renderer) Render(ctx context.Context, form *model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.New("tui: form is nil")
	}
	if err := form.CheckRenderable(); err != nil {
		return nil, err
	}

	mapping := render.MapErrorKeys(form, opts.Errors)
	for _, message := range mapping.Form {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string, len(opts.Values))
	for k, v := range opts.Values {
		values[k] = v
	}
	for _, field := range form.Fields() {
		if !field.Visibility.Visible(opts.Target) {
			continue
		}
		for _, message := range mapping.FieldErrors(field.Name) {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
				return nil, err
			}
		}
		answer, err := r.promptField(ctx, field, values[field.Name])
		if err != nil {
			return nil, err
		}
		values[field.Name] = answer
	}

	sub := Submission{Values: values}
	if form.HasDetails() {
		rows, err := r.promptRows(ctx, form.Columns(), opts.Rows)
		if err != nil {
			return nil, err
		}
		rows, total := aggregate.Recompute(form.Columns(), rows)
		sub.Details = rows
		sub.Total = &total
	}
	return r.serialize(form, sub)
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, current string) (string, error) {
	message := field.Name
	if field.Required() {
		message += " *"
	}

	if field.Kind.Capabilities().HasOptions {
		options := append([]string(nil), field.Options...)
		if !field.Required() {
			options = append([]string{noneOption}, options...)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, current),
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) || options[idx] == noneOption {
			return "", nil
		}
		return options[idx], nil
	}

	var help string
	if field.Kind.Capabilities().HasMaxLength && field.MaxLength > 0 {
		help = "up to " + strconv.Itoa(field.MaxLength) + " characters"
	}
	return r.driver.Input(ctx, InputConfig{
		Message: message,
		Default: current,
		Help:    help,
		Validator: func(answer string) error {
			if errs := r.validator.ValidateField(field, answer); len(errs) > 0 {
				return errors.New(errs[0].Message)
			}
			return nil
		},
	})
}

func (r *Renderer) promptRows(ctx context.Context, columns []model.DetailColumn, seed []model.DetailRow) ([]model.DetailRow, error) {
	rows := model.CloneRows(seed)
	located := aggregate.Locate(columns)

	for i, row := range rows {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+fmt.Sprintf("%d. %s", i+1, strings.Join(row, " | "))); err != nil {
			return nil, err
		}
	}

	for {
		more, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add detail row %d?", len(rows)+1),
			Default: len(rows) == 0,
		})
		if err != nil {
			return nil, err
		}
		if !more {
			return rows, nil
		}

		rowNum := len(rows) + 1
		row := make(model.DetailRow, len(columns))
		for idx, col := range columns {
			if located.Complete() && idx == located.Amount {
				continue
			}
			answer, err := r.driver.Input(ctx, InputConfig{
				Message:   col.Name,
				Validator: r.cellValidator(columns, rowNum, idx),
			})
			if err != nil {
				return nil, err
			}
			row[idx] = answer
		}
		rows = append(rows, row)

		var total float64
		rows, total = aggregate.Recompute(columns, rows)
		if located.Complete() {
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+"Total: "+aggregate.FormatAmount(total)); err != nil {
				return nil, err
			}
		}
	}
}

// cellValidator checks one cell of row rowNum through the row rules so cell
// messages match the ones a full submission reports.
func (r *Renderer) cellValidator(columns []model.DetailColumn, rowNum, idx int) func(string) error {
	return func(answer string) error {
		rows := make([]model.DetailRow, rowNum)
		rows[rowNum-1] = make(model.DetailRow, len(columns))
		rows[rowNum-1][idx] = answer
		for _, err := range r.validator.ValidateRows(columns, rows) {
			if err.Row == rowNum && err.Column == columns[idx].Name {
				return errors.New(err.Message)
			}
		}
		return nil
	}
}

func (r *Renderer) serialize(form *model.Form, sub Submission) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		for k, v := range sub.Values {
			values.Set(k, v)
		}
		for i, row := range sub.Details {
			for j, cell := range row {
				values.Set("details["+strconv.Itoa(i)+"]["+strconv.Itoa(j)+"]", cell)
			}
		}
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		if id := sub.Values["id"]; id != "" {
			fmt.Fprintf(&b, "id: %s\n", id)
		}
		for _, name := range form.FieldNames() {
			if v, ok := sub.Values[name]; ok {
				fmt.Fprintf(&b, "%s: %s\n", name, v)
			}
		}
		for i, row := range sub.Details {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(row, " | "))
		}
		if sub.Total != nil {
			fmt.Fprintf(&b, "Total: %s\n", aggregate.FormatAmount(*sub.Total))
		}
		return []byte(b.String()), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sub); err != nil {
			return nil, fmt.Errorf("tui: encode submission: %w", err)
		}
		return buf.Bytes(), nil
	}
}
