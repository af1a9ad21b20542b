package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
)

// strategy decodes one document layout into the IR.
type strategy interface {
	name() string
	decode(raw []byte) (pkgschema.SchemaIR, error)
}

// modulesStrategy handles the Modules/Module/Forms/Form hierarchy.
type modulesStrategy struct{}

func (modulesStrategy) name() string { return "modules" }

func (modulesStrategy) decode(raw []byte) (pkgschema.SchemaIR, error) {
	var doc struct {
		Modules xmlModules `xml:"Modules"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return pkgschema.SchemaIR{}, err
	}

	ir := pkgschema.SchemaIR{Modules: make([]pkgschema.ModuleIR, 0, len(doc.Modules.Modules))}
	for _, mod := range doc.Modules.Modules {
		out := pkgschema.ModuleIR{Name: mod.Name}
		if mod.Forms != nil {
			for _, form := range mod.Forms.Forms {
				out.Forms = append(out.Forms, form.toIR())
			}
		}
		ir.Modules = append(ir.Modules, out)
	}
	return ir, nil
}

// legacyStrategy handles documents holding a bare Form, either as a child of
// the root element or as the root itself.
type legacyStrategy struct {
	module string
}

func (legacyStrategy) name() string { return "legacy" }

func (s legacyStrategy) decode(raw []byte) (pkgschema.SchemaIR, error) {
	var doc struct {
		XMLName     xml.Name
		Name        string          `xml:"name,attr"`
		FieldList   *xmlFieldList   `xml:"FieldList"`
		DetailTable *xmlDetailTable `xml:"DetailTable"`
		Forms       []xmlForm       `xml:"Form"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return pkgschema.SchemaIR{}, err
	}

	forms := make([]pkgschema.FormIR, 0, len(doc.Forms)+1)
	if doc.XMLName.Local == "Form" {
		root := xmlForm{Name: doc.Name, FieldList: doc.FieldList, DetailTable: doc.DetailTable}
		forms = append(forms, root.toIR())
	}
	for _, form := range doc.Forms {
		forms = append(forms, form.toIR())
	}
	if len(forms) == 0 {
		return pkgschema.SchemaIR{}, nil
	}
	return pkgschema.SchemaIR{
		Modules: []pkgschema.ModuleIR{{Name: s.module, Forms: forms}},
	}, nil
}

// hasModules reports whether the root element has a direct Modules child. It
// also surfaces syntax errors before any strategy runs.
func hasModules(raw []byte) (bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	depth := 0
	found := false
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				sawRoot = true
			}
			if depth == 1 && t.Name.Local == "Modules" {
				found = true
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if !sawRoot {
		return false, errors.New("document has no root element")
	}
	return found, nil
}
