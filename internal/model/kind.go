package model

import "fmt"

// FieldKind is the closed set of input kinds a schema document can declare.
// The element tag of a field entry is its kind.
type FieldKind string

const (
	KindTextField  FieldKind = "TextField"
	KindComboBox   FieldKind = "ComboBox"
	KindMoneyField FieldKind = "MoneyField"
)

// Capabilities describes which optional attributes a kind carries.
type Capabilities struct {
	HasOptions   bool `json:"hasOptions"`
	HasMaxLength bool `json:"hasMaxLength"`
}

var kindCapabilities = map[FieldKind]Capabilities{
	KindTextField:  {HasMaxLength: true},
	KindComboBox:   {HasOptions: true},
	KindMoneyField: {HasMaxLength: true},
}

var kindDefaultLength = map[FieldKind]int{
	KindTextField:  200,
	KindMoneyField: 10,
}

// Kinds returns the supported kinds in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{KindTextField, KindComboBox, KindMoneyField}
}

// ParseFieldKind maps an element tag onto a FieldKind. Matching is exact.
func ParseFieldKind(tag string) (FieldKind, error) {
	kind := FieldKind(tag)
	if _, ok := kindCapabilities[kind]; !ok {
		return "", fmt.Errorf("model: unknown field kind %q", tag)
	}
	return kind, nil
}

// Valid reports whether k is one of the supported kinds.
func (k FieldKind) Valid() bool {
	_, ok := kindCapabilities[k]
	return ok
}

// Capabilities returns the capability set for k. Unknown kinds have none.
func (k FieldKind) Capabilities() Capabilities {
	return kindCapabilities[k]
}

// DefaultMaxLength is the Length applied when the document omits it.
func (k FieldKind) DefaultMaxLength() int {
	return kindDefaultLength[k]
}

func (k FieldKind) String() string {
	return string(k)
}
