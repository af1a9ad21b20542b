// Package validation evaluates a form's declarative rules against submitted
// values. Violations are returned as data; Validate never fails.
package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

const phoneDigits = 11

// Validator checks submitted values against a form.
type Validator struct {
	translator    Translator
	evaluator     visibility.Evaluator
	strictOptions bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLocale selects the message language by BCP 47 tag. Unknown or
// unparsable tags fall back to English.
func WithLocale(locale string) Option {
	return func(v *Validator) {
		tag, err := language.Parse(locale)
		if err != nil {
			tag = language.English
		}
		v.translator = NewTranslator(tag)
	}
}

// WithTranslator installs a custom Translator.
func WithTranslator(t Translator) Option {
	return func(v *Validator) {
		if t != nil {
			v.translator = t
		}
	}
}

// WithVisibilityEvaluator overrides how the desktop flag is read.
func WithVisibilityEvaluator(e visibility.Evaluator) Option {
	return func(v *Validator) {
		if e != nil {
			v.evaluator = e
		}
	}
}

// WithStrictOptions rejects ComboBox values outside the declared options.
func WithStrictOptions() Option {
	return func(v *Validator) {
		v.strictOptions = true
	}
}

// New constructs a Validator. The default speaks English and evaluates the
// visibility mask as declared.
func New(options ...Option) *Validator {
	v := &Validator{
		translator: NewTranslator(language.English),
		evaluator:  visibility.MaskEvaluator,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate runs the default English validator.
func Validate(form *model.Form, values map[string]string, rows []model.DetailRow) Errors {
	return defaultValidator.Validate(form, values, rows)
}

// Validate checks every visible field in document order, then the detail
// rows when the form declares columns. All violations are collected.
func (v *Validator) Validate(form *model.Form, values map[string]string, rows []model.DetailRow) Errors {
	if form == nil {
		return nil
	}

	var errs Errors
	for _, field := range form.Fields() {
		if !v.evaluator.Eval(field.Name, field.Visibility, visibility.Desktop) {
			continue
		}
		errs = append(errs, v.checkField(field, values[field.Name])...)
	}
	if form.HasDetails() {
		errs = append(errs, v.checkRows(form.Columns(), rows)...)
	}
	return errs
}

// ValidateField checks a single master field, ignoring its visibility.
func (v *Validator) ValidateField(field model.Field, value string) Errors {
	return v.checkField(field, value)
}

// ValidateRows checks detail rows against columns. An empty row list is a
// minRows violation.
func (v *Validator) ValidateRows(columns []model.DetailColumn, rows []model.DetailRow) Errors {
	return v.checkRows(columns, rows)
}

func (v *Validator) checkField(field model.Field, raw string) Errors {
	var errs Errors
	value := strings.TrimSpace(raw)

	add := func(rule Rule, key string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field.Name,
			Rule:    rule,
			Message: v.translator.Translate(key, args...),
		})
	}

	if field.Required() && value == "" {
		add(RuleRequired, msgRequired, field.Name)
	}
	if value == "" {
		return errs
	}

	if field.Numeric() && !IsNumeric(value) {
		add(RuleNumeric, msgNumeric, field.Name)
	}
	if field.Kind.Capabilities().HasMaxLength && field.MaxLength > 0 &&
		utf8.RuneCountInString(value) > field.MaxLength {
		add(RuleMaxLength, msgMaxLength, field.Name, strconv.Itoa(field.MaxLength))
	}
	if v.strictOptions && field.Kind.Capabilities().HasOptions && !contains(field.Options, value) {
		add(RuleOption, msgOptionInvalid, field.Name)
	}

	for _, role := range field.Roles() {
		switch role {
		case model.RoleEmail:
			if !strings.Contains(value, "@") {
				add(RuleEmail, msgEmail, field.Name)
			}
		case model.RolePhone:
			if !IsPhone(value) {
				add(RulePhone, msgPhone, field.Name)
			}
		}
	}
	return errs
}

func (v *Validator) checkRows(columns []model.DetailColumn, rows []model.DetailRow) Errors {
	if len(rows) == 0 {
		return Errors{{
			Rule:    RuleMinRows,
			Message: v.translator.Translate(msgDetailsEmpty),
		}}
	}

	var errs Errors
	for i, row := range rows {
		rowNum := strconv.Itoa(i + 1)
		for idx, col := range columns {
			value := strings.TrimSpace(row.Value(idx))
			switch col.EffectiveRole() {
			case model.RoleItemCode, model.RoleItemName:
				if value == "" {
					errs = append(errs, ValidationError{
						Row:     i + 1,
						Column:  col.Name,
						Rule:    RuleRequired,
						Message: v.translator.Translate(msgCellRequired, rowNum, col.Name),
					})
				}
			case model.RoleQuantity, model.RoleUnitPrice, model.RoleAmount:
				if value != "" && !IsNumeric(value) {
					errs = append(errs, ValidationError{
						Row:     i + 1,
						Column:  col.Name,
						Rule:    RuleNumeric,
						Message: v.translator.Translate(msgCellNumeric, rowNum, col.Name),
					})
				}
			}
		}
	}
	return errs
}

// IsNumeric reports whether a trimmed value parses as a decimal float.
// Hexadecimal literals are rejected.
func IsNumeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	lower := strings.ToLower(strings.TrimLeft(value, "+-"))
	if strings.HasPrefix(lower, "0x") {
		return false
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// IsPhone reports whether value is exactly eleven ASCII digits.
func IsPhone(value string) bool {
	if len(value) != phoneDigits {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
