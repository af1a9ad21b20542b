package schema

// SchemaIR is the shape-neutral tree produced by parser strategies. Both the
// legacy bare-Form layout and the Modules hierarchy normalise into it before
// the model builder interprets attributes.
type SchemaIR struct {
	Modules []ModuleIR
}

// ModuleIR is one Module element.
type ModuleIR struct {
	Name  string
	Forms []FormIR
}

// FormIR is one Form element.
type FormIR struct {
	Name    string
	Fields  []FieldIR
	Columns []ColumnIR
}

// FieldIR is a FieldList child. Tag carries the element name, which the
// builder reads as the field kind.
type FieldIR struct {
	Tag        string
	Attributes map[string]string
	Options    []string
	Validation *ValidationIR
}

// Attr returns the attribute value and whether it was present.
func (f FieldIR) Attr(name string) (string, bool) {
	if f.Attributes == nil {
		return "", false
	}
	v, ok := f.Attributes[name]
	return v, ok
}

// ValidationIR holds the raw text of the Validation sub-elements.
type ValidationIR struct {
	Required string
	Number   string
}

// ColumnIR is a DetailTable Column element.
type ColumnIR struct {
	Name  string
	Width string
	Type  string
	Role  string
}

// Empty reports whether the IR carries no modules.
func (ir SchemaIR) Empty() bool {
	return len(ir.Modules) == 0
}
