package model

import "encoding/json"

// LegacyModuleName hosts a bare Form loaded from a document without a
// Modules wrapper.
const LegacyModuleName = "default"

// Form is an immutable schema unit: ordered fields plus optional detail
// columns. Accessors return copies.
type Form struct {
	name    string
	fields  []Field
	index   map[string]int
	columns []DetailColumn
}

// NewForm builds a Form. When a field name repeats, the first occurrence wins
// and later ones are dropped.
func NewForm(name string, fields []Field, columns []DetailColumn) *Form {
	form := &Form{
		name:  name,
		index: make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		if _, dup := form.index[field.Name]; dup {
			continue
		}
		form.index[field.Name] = len(form.fields)
		form.fields = append(form.fields, field.clone())
	}
	if len(columns) > 0 {
		form.columns = append([]DetailColumn(nil), columns...)
	}
	return form
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Fields returns the fields in document order.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	for i, field := range f.fields {
		out[i] = field.clone()
	}
	return out
}

// Field looks up a field by name.
func (f *Form) Field(name string) (Field, bool) {
	idx, ok := f.index[name]
	if !ok {
		return Field{}, false
	}
	return f.fields[idx].clone(), true
}

// FieldNames returns field names in document order.
func (f *Form) FieldNames() []string {
	out := make([]string, len(f.fields))
	for i, field := range f.fields {
		out[i] = field.Name
	}
	return out
}

// Columns returns the detail columns, nil when the form has no detail table.
func (f *Form) Columns() []DetailColumn {
	if len(f.columns) == 0 {
		return nil
	}
	return append([]DetailColumn(nil), f.columns...)
}

// HasDetails reports whether the form declares a detail table.
func (f *Form) HasDetails() bool {
	return len(f.columns) > 0
}

// CheckRenderable reports problems that only matter once a form is shown or
// validated, such as a ComboBox without options.
func (f *Form) CheckRenderable() error {
	for _, field := range f.fields {
		if field.Kind.Capabilities().HasOptions && len(field.Options) == 0 {
			return &SchemaFormatError{
				Form:   f.name,
				Field:  field.Name,
				Reason: "combo box declares no options",
			}
		}
	}
	return nil
}

type formJSON struct {
	Name    string         `json:"name"`
	Fields  []Field        `json:"fields"`
	Columns []DetailColumn `json:"columns,omitempty"`
}

// MarshalJSON exposes the form for CLI and HTTP listings.
func (f *Form) MarshalJSON() ([]byte, error) {
	return json.Marshal(formJSON{Name: f.name, Fields: f.Fields(), Columns: f.Columns()})
}

// Module groups forms under a name.
type Module struct {
	name  string
	forms []*Form
	index map[string]int
}

// NewModule builds a Module; duplicate form names keep the first occurrence.
func NewModule(name string, forms []*Form) *Module {
	module := &Module{name: name, index: make(map[string]int, len(forms))}
	for _, form := range forms {
		if form == nil {
			continue
		}
		if _, dup := module.index[form.name]; dup {
			continue
		}
		module.index[form.name] = len(module.forms)
		module.forms = append(module.forms, form)
	}
	return module
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Forms returns forms in document order.
func (m *Module) Forms() []*Form {
	return append([]*Form(nil), m.forms...)
}

// FormNames returns form names in document order.
func (m *Module) FormNames() []string {
	out := make([]string, len(m.forms))
	for i, form := range m.forms {
		out[i] = form.name
	}
	return out
}

// Form looks up a form by name.
func (m *Module) Form(name string) (*Form, bool) {
	idx, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.forms[idx], true
}

// Schema is the loaded module hierarchy. It is never mutated after load.
type Schema struct {
	modules []*Module
	index   map[string]int
}

// NewSchema builds a Schema; duplicate module names keep the first occurrence.
func NewSchema(modules []*Module) *Schema {
	schema := &Schema{index: make(map[string]int, len(modules))}
	for _, module := range modules {
		if module == nil {
			continue
		}
		if _, dup := schema.index[module.name]; dup {
			continue
		}
		schema.index[module.name] = len(schema.modules)
		schema.modules = append(schema.modules, module)
	}
	return schema
}

// Modules returns modules in document order.
func (s *Schema) Modules() []*Module {
	return append([]*Module(nil), s.modules...)
}

// ModuleNames returns module names in document order.
func (s *Schema) ModuleNames() []string {
	out := make([]string, len(s.modules))
	for i, module := range s.modules {
		out[i] = module.name
	}
	return out
}

// Module looks up a module by name.
func (s *Schema) Module(name string) (*Module, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.modules[idx], true
}

// Empty reports whether the schema declares no modules.
func (s *Schema) Empty() bool {
	return len(s.modules) == 0
}

// Form resolves a (module, form) pair. A missing module or form is a
// SchemaFormatError since the caller asked for a node the document lacks.
func (s *Schema) Form(module, form string) (*Form, error) {
	m, ok := s.Module(module)
	if !ok {
		return nil, &SchemaFormatError{Module: module, Reason: "module not found"}
	}
	f, ok := m.Form(form)
	if !ok {
		return nil, &SchemaFormatError{Module: module, Form: form, Reason: "form not found"}
	}
	return f, nil
}

type moduleJSON struct {
	Name  string  `json:"name"`
	Forms []*Form `json:"forms"`
}

// MarshalJSON exposes the schema as nested modules and forms.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := make([]moduleJSON, len(s.modules))
	for i, module := range s.modules {
		out[i] = moduleJSON{Name: module.name, Forms: module.forms}
	}
	return json.Marshal(struct {
		Modules []moduleJSON `json:"modules"`
	}{Modules: out})
}
