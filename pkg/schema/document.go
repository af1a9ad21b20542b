package schema

import "errors"

var (
	// ErrSourceNotFound marks a source whose backing file or URL is absent.
	ErrSourceNotFound = errors.New("schema: source not found")
	// ErrEmptyDocument is returned for zero-byte payloads.
	ErrEmptyDocument = errors.New("schema: raw document is empty")
)

// Document is a raw schema payload together with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw so later mutation by the caller cannot leak in.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, ErrEmptyDocument
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
