package store

import (
	"errors"
	"strings"
)

var (
	// ErrRecordNotFound reports an upsert for an id the collection lacks.
	ErrRecordNotFound = errors.New("store: record not found")
	// ErrMalformedCollection reports a collection payload that cannot be
	// decoded.
	ErrMalformedCollection = errors.New("store: malformed collection")
)

// StorageError wraps a failure reading or writing one collection.
type StorageError struct {
	Op     string
	Module string
	Form   string
	Path   string
	Err    error
}

func (e *StorageError) Error() string {
	var b strings.Builder
	b.WriteString("store: ")
	b.WriteString(e.Op)
	if e.Module != "" || e.Form != "" {
		b.WriteString(" ")
		b.WriteString(e.Module)
		b.WriteString("/")
		b.WriteString(e.Form)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(strings.TrimPrefix(e.Err.Error(), "store: "))
	}
	return b.String()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
