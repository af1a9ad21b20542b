// Package editor mutates a form metadata document in place: adding and removing
// modules and forms, and replacing a form's field list. Elements the editor
// does not touch are written back with their attributes intact; comments and
// processing instructions are not preserved.
package editor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-mdaform/pkg/model"
	"github.com/goliatone/go-mdaform/pkg/visibility"
)

const rootElement = "FormMetadata"

var (
	// ErrEmptyName reports a module or form name that is blank.
	ErrEmptyName = errors.New("editor: name must not be empty")
	// ErrDuplicateName reports a module or form name already in use.
	ErrDuplicateName = errors.New("editor: name already exists")
	// ErrNotFound reports a module or form the document does not declare.
	ErrNotFound = errors.New("editor: not found")
)

// Document is an editable schema document.
type Document struct {
	root *node
}

// New returns an empty document with a Modules container.
func New() *Document {
	root := element(rootElement)
	root.ensure("Modules")
	return &Document{root: root}
}

// Open parses raw document bytes.
func Open(raw []byte) (*Document, error) {
	root, err := parseTree(raw)
	if err != nil {
		return nil, fmt.Errorf("editor: parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// Modules returns module names in document order.
func (d *Document) Modules() []string {
	modules := d.root.child("Modules")
	if modules == nil {
		return nil
	}
	return childNames(modules, "Module")
}

// Forms returns the form names of a module in document order.
func (d *Document) Forms(module string) ([]string, error) {
	m, err := d.module(module)
	if err != nil {
		return nil, err
	}
	forms := m.child("Forms")
	if forms == nil {
		return nil, nil
	}
	return childNames(forms, "Form"), nil
}

// AddModule appends a module with an empty Forms container.
func (d *Document) AddModule(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	modules := d.root.ensure("Modules")
	if modules.named("Module", name) >= 0 {
		return fmt.Errorf("%w: module %q", ErrDuplicateName, name)
	}
	m := element("Module", attr("name", name))
	m.ensure("Forms")
	modules.children = append(modules.children, m)
	return nil
}

// DeleteModule removes a module and every form it holds.
func (d *Document) DeleteModule(name string) error {
	modules := d.root.child("Modules")
	idx := -1
	if modules != nil {
		idx = modules.named("Module", name)
	}
	if idx < 0 {
		return fmt.Errorf("%w: module %q", ErrNotFound, name)
	}
	modules.remove(idx)
	return nil
}

// AddForm appends a form with an empty FieldList to module.
func (d *Document) AddForm(module, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	m, err := d.module(module)
	if err != nil {
		return err
	}
	forms := m.ensure("Forms")
	if forms.named("Form", name) >= 0 {
		return fmt.Errorf("%w: form %q in module %q", ErrDuplicateName, name, module)
	}
	f := element("Form", attr("name", name))
	f.ensure("FieldList")
	forms.children = append(forms.children, f)
	return nil
}

// DeleteForm removes a form from module.
func (d *Document) DeleteForm(module, name string) error {
	m, err := d.module(module)
	if err != nil {
		return err
	}
	forms := m.child("Forms")
	idx := -1
	if forms != nil {
		idx = forms.named("Form", name)
	}
	if idx < 0 {
		return fmt.Errorf("%w: form %q in module %q", ErrNotFound, name, module)
	}
	forms.remove(idx)
	return nil
}

// SetFields replaces the FieldList of a form.
func (d *Document) SetFields(module, form string, fields []model.Field) error {
	f, err := d.form(module, form)
	if err != nil {
		return err
	}
	children := make([]*node, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		n, err := fieldNode(field)
		if err != nil {
			return err
		}
		name, _ := n.attr("name")
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: field %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
		children = append(children, n)
	}
	f.ensure("FieldList").children = children
	return nil
}

// SetColumns replaces the DetailTable of a form. An empty list removes it.
func (d *Document) SetColumns(module, form string, columns []model.DetailColumn) error {
	f, err := d.form(module, form)
	if err != nil {
		return err
	}
	table := element("DetailTable")
	for _, col := range columns {
		name := strings.TrimSpace(col.Name)
		if name == "" {
			return fmt.Errorf("%w: column", ErrEmptyName)
		}
		n := element("Column", attr("name", name))
		if col.Width > 0 {
			n.attrs = append(n.attrs, attr("width", strconv.Itoa(col.Width)))
		}
		if col.Type != "" {
			n.attrs = append(n.attrs, attr("type", col.Type))
		}
		if col.Role != model.RoleNone {
			n.attrs = append(n.attrs, attr("role", string(col.Role)))
		}
		table.children = append(table.children, n)
	}

	for i, c := range f.children {
		if c.name.Local == "DetailTable" {
			f.remove(i)
			break
		}
	}
	if len(columns) > 0 {
		f.children = append(f.children, table)
	}
	return nil
}

// Bytes renders the document with an XML declaration and two-space indent.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := d.root.encode(enc); err != nil {
		return nil, fmt.Errorf("editor: encode document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("editor: encode document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (d *Document) module(name string) (*node, error) {
	modules := d.root.child("Modules")
	if modules != nil {
		if idx := modules.named("Module", name); idx >= 0 {
			return modules.children[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: module %q", ErrNotFound, name)
}

func (d *Document) form(module, name string) (*node, error) {
	m, err := d.module(module)
	if err != nil {
		return nil, err
	}
	if forms := m.child("Forms"); forms != nil {
		if idx := forms.named("Form", name); idx >= 0 {
			return forms.children[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: form %q in module %q", ErrNotFound, name, module)
}

func childNames(parent *node, local string) []string {
	var names []string
	for _, c := range parent.children {
		if c.name.Local != local {
			continue
		}
		name, _ := c.attr("name")
		names = append(names, name)
	}
	return names
}

func fieldNode(field model.Field) (*node, error) {
	name := strings.TrimSpace(field.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: field", ErrEmptyName)
	}
	if !field.Kind.Valid() {
		return nil, fmt.Errorf("editor: field %q: unknown kind %q", name, field.Kind)
	}

	geometry := field.Geometry
	if geometry == (model.Geometry{}) {
		geometry = model.DefaultGeometry
	}
	mask := field.Visibility
	if mask == "" {
		mask = visibility.Default
	}

	n := element(string(field.Kind),
		attr("name", name),
		attr("Left", strconv.Itoa(geometry.Left)),
		attr("Top", strconv.Itoa(geometry.Top)),
		attr("Width", strconv.Itoa(geometry.Width)),
		attr("Height", strconv.Itoa(geometry.Height)),
		attr("VisibleExt", string(mask)),
	)
	caps := field.Kind.Capabilities()
	if caps.HasMaxLength && field.MaxLength > 0 && field.MaxLength != field.Kind.DefaultMaxLength() {
		n.attrs = append(n.attrs, attr("Length", strconv.Itoa(field.MaxLength)))
	}
	if field.Role != model.RoleNone {
		n.attrs = append(n.attrs, attr("Role", string(field.Role)))
	}
	if caps.HasOptions {
		options := element("Options")
		for _, opt := range field.Options {
			o := element("Option")
			o.text = opt
			options.children = append(options.children, o)
		}
		n.children = append(n.children, options)
	}
	if field.Required() || field.Numeric() {
		rules := element("Validation")
		if field.Required() {
			r := element("Required")
			r.text = "1"
			rules.children = append(rules.children, r)
		}
		if field.Numeric() {
			r := element("Number")
			r.text = "1"
			rules.children = append(rules.children, r)
		}
		n.children = append(n.children, rules)
	}
	return n, nil
}
