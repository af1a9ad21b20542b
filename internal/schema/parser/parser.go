package parser

import (
	"context"

	"github.com/goliatone/go-mdaform/internal/model"
	pkgschema "github.com/goliatone/go-mdaform/pkg/schema"
)

// Parser implements pkgschema.Parser for XML form metadata documents.
type Parser struct {
	modules strategy
	legacy  strategy
}

var _ pkgschema.Parser = (*Parser)(nil)

// New constructs a Parser.
func New(options pkgschema.ParserOptions) *Parser {
	legacyModule := options.LegacyModule
	if legacyModule == "" {
		legacyModule = model.LegacyModuleName
	}
	return &Parser{
		modules: modulesStrategy{},
		legacy:  legacyStrategy{module: legacyModule},
	}
}

// Parse probes doc for a Modules node and decodes it with the matching
// strategy. Documents with neither Modules nor a bare Form yield an empty IR.
func (p *Parser) Parse(ctx context.Context, doc pkgschema.Document) (pkgschema.SchemaIR, error) {
	if err := ctx.Err(); err != nil {
		return pkgschema.SchemaIR{}, err
	}

	raw := doc.Raw()
	modules, err := hasModules(raw)
	if err != nil {
		return pkgschema.SchemaIR{}, malformed(doc, err)
	}

	s := p.legacy
	if modules {
		s = p.modules
	}
	ir, err := s.decode(raw)
	if err != nil {
		return pkgschema.SchemaIR{}, malformed(doc, err)
	}
	return ir, nil
}

// Strategy names the strategy Parse would use for doc. Exposed for diagnostics.
func (p *Parser) Strategy(doc pkgschema.Document) (string, error) {
	modules, err := hasModules(doc.Raw())
	if err != nil {
		return "", malformed(doc, err)
	}
	if modules {
		return p.modules.name(), nil
	}
	return p.legacy.name(), nil
}

func malformed(doc pkgschema.Document, err error) error {
	reason := "malformed document"
	if loc := doc.Location(); loc != "" {
		reason = "malformed document " + loc
	}
	return &model.SchemaFormatError{Reason: reason, Err: err}
}
