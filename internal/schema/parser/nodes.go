package parser

import (
	"encoding/xml"
	"strings"

	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
)

type xmlModules struct {
	Modules []xmlModule `xml:"Module"`
}

type xmlModule struct {
	Name  string    `xml:"name,attr"`
	Forms *xmlForms `xml:"Forms"`
}

type xmlForms struct {
	Forms []xmlForm `xml:"Form"`
}

type xmlForm struct {
	Name        string          `xml:"name,attr"`
	FieldList   *xmlFieldList   `xml:"FieldList"`
	DetailTable *xmlDetailTable `xml:"DetailTable"`
}

type xmlFieldList struct {
	Fields []xmlField `xml:",any"`
}

// xmlField captures any FieldList child; the tag is the kind.
type xmlField struct {
	XMLName    xml.Name
	Attrs      []xml.Attr     `xml:",any,attr"`
	Options    *xmlOptions    `xml:"Options"`
	Validation *xmlValidation `xml:"Validation"`
}

type xmlOptions struct {
	Options []string `xml:"Option"`
}

type xmlValidation struct {
	Required *string `xml:"Required"`
	Number   *string `xml:"Number"`
}

type xmlDetailTable struct {
	Columns []xmlColumn `xml:"Column"`
}

type xmlColumn struct {
	Name  string `xml:"name,attr"`
	Width string `xml:"width,attr"`
	Type  string `xml:"type,attr"`
	Role  string `xml:"role,attr"`
}

func (f xmlForm) toIR() pkgschema.FormIR {
	out := pkgschema.FormIR{Name: f.Name}
	if f.FieldList != nil {
		out.Fields = make([]pkgschema.FieldIR, 0, len(f.FieldList.Fields))
		for _, field := range f.FieldList.Fields {
			out.Fields = append(out.Fields, field.toIR())
		}
	}
	if f.DetailTable != nil {
		out.Columns = make([]pkgschema.ColumnIR, 0, len(f.DetailTable.Columns))
		for _, col := range f.DetailTable.Columns {
			out.Columns = append(out.Columns, pkgschema.ColumnIR{
				Name:  col.Name,
				Width: col.Width,
				Type:  col.Type,
				Role:  col.Role,
			})
		}
	}
	return out
}

func (f xmlField) toIR() pkgschema.FieldIR {
	out := pkgschema.FieldIR{
		Tag:        f.XMLName.Local,
		Attributes: make(map[string]string, len(f.Attrs)),
	}
	for _, attr := range f.Attrs {
		// First occurrence wins, matching how duplicate names are treated
		// elsewhere in the document.
		if _, seen := out.Attributes[attr.Name.Local]; seen {
			continue
		}
		out.Attributes[attr.Name.Local] = attr.Value
	}
	if f.Options != nil {
		out.Options = make([]string, 0, len(f.Options.Options))
		for _, opt := range f.Options.Options {
			out.Options = append(out.Options, strings.TrimSpace(opt))
		}
	}
	if f.Validation != nil {
		out.Validation = &pkgschema.ValidationIR{}
		if f.Validation.Required != nil {
			out.Validation.Required = *f.Validation.Required
		}
		if f.Validation.Number != nil {
			out.Validation.Number = *f.Validation.Number
		}
	}
	return out
}
