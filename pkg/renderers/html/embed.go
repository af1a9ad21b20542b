package html

import (
	"embed"
	"errors"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in template bundle rooted at the templates
// directory, for callers that want to copy and customise it.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// layeredFS serves files from the overlay first and falls back to base.
type layeredFS struct {
	overlay fs.FS
	base    fs.FS
}

func (l layeredFS) Open(name string) (fs.File, error) {
	file, err := l.overlay.Open(name)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return l.base.Open(name)
}
