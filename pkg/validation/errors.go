package validation

import (
	"strconv"
	"strings"
)

// Rule names the check that produced a ValidationError.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleNumeric   Rule = "numeric"
	RuleMaxLength Rule = "maxLength"
	RuleEmail     Rule = "email"
	RulePhone     Rule = "phone"
	RuleOption    Rule = "option"
	RuleMinRows   Rule = "minRows"
)

// DetailsKey is the ByField key for errors that concern the detail table as a
// whole.
const DetailsKey = "details"

// ValidationError is one violated rule. Field is set for master fields; Row
// (1-based) and Column are set for detail cells.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// Key returns the location used when grouping errors: the field name, a
// "details[N].column" path for cells, or DetailsKey.
func (e ValidationError) Key() string {
	switch {
	case e.Field != "":
		return e.Field
	case e.Row > 0:
		return DetailsKey + "[" + strconv.Itoa(e.Row) + "]." + e.Column
	default:
		return DetailsKey
	}
}

// Errors is the full result of one validation pass.
type Errors []ValidationError

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages returns every message in order.
func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Message
	}
	return out
}

// ByField groups messages by Key, preserving order within each group.
func (e Errors) ByField() map[string][]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, err := range e {
		key := err.Key()
		out[key] = append(out[key], err.Message)
	}
	return out
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
