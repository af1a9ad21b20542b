package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// FileStore keeps each collection in data_<module>_<form>.json under a data
// directory. Every mutation reads the whole file and atomically replaces it.
// Writers in other processes are not coordinated with.
type FileStore struct {
	dir  string
	opts Options
	mu   sync.Mutex
}

var _ Repository = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on the
// first write.
func NewFileStore(dir string, options ...Option) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir, opts: NewOptions(options...)}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the collection file for a (module, form) pair.
func (s *FileStore) Path(module, form string) string {
	return filepath.Join(s.dir, CollectionFileName(module, form))
}

// CollectionFileName builds data_<module>_<form>.json. Inside each name,
// underscores, percent signs and characters unsafe in file names are
// percent-encoded, so distinct pairs never share a file. Names made of
// letters, digits, dots, spaces and hyphens keep their plain form.
func CollectionFileName(module, form string) string {
	return "data_" + escapeName(module) + "_" + escapeName(form) + ".json"
}

func escapeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if needsEscape(c) {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func needsEscape(c byte) bool {
	if c < 0x20 || c == 0x7f {
		return true
	}
	switch c {
	case '_', '%', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
		return true
	}
	return false
}

// List returns the stored records. A missing file is an empty collection; an
// unreadable or malformed file is logged and also reported as empty.
func (s *FileStore) List(ctx context.Context, module, form string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(module, form)
	if err != nil {
		s.opts.Logger.Warn("store: collection unavailable, listing as empty",
			zap.String("module", module),
			zap.String("form", form),
			zap.String("path", s.Path(module, form)),
			zap.Error(err),
		)
		return []Record{}, nil
	}
	return records, nil
}

// Upsert implements Repository.
func (s *FileStore) Upsert(ctx context.Context, module, form string, values map[string]string, rows []model.DetailRow) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(module, form)
	if err != nil {
		return Record{}, s.wrap("upsert", module, form, err)
	}

	f := s.opts.form(module, form)
	record, records, err := s.opts.mutate(records, f, values, rows)
	if err != nil {
		return Record{}, s.wrap("upsert", module, form, fmt.Errorf("%w: id %q", err, values[KeyID]))
	}
	if err := s.save(module, form, records); err != nil {
		return Record{}, s.wrap("upsert", module, form, err)
	}
	s.opts.Logger.Debug("store: record saved",
		zap.String("module", module),
		zap.String("form", form),
		zap.String("id", record.ID),
	)
	return record, nil
}

// Delete implements Repository. Deleting an absent id returns false.
func (s *FileStore) Delete(ctx context.Context, module, form, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(module, form)
	if err != nil {
		return false, s.wrap("delete", module, form, err)
	}
	records, removed := removeRecord(records, id)
	if !removed {
		return false, nil
	}
	if err := s.save(module, form, records); err != nil {
		return false, s.wrap("delete", module, form, err)
	}
	return true, nil
}

func (s *FileStore) columns(module, form string) []model.DetailColumn {
	if f := s.opts.form(module, form); f != nil {
		return f.Columns()
	}
	return nil
}

func (s *FileStore) load(module, form string) ([]Record, error) {
	data, err := os.ReadFile(s.Path(module, form))
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCollection(data, s.opts.form(module, form))
}

func (s *FileStore) save(module, form string, records []Record) error {
	payload, err := encodeCollection(records, s.columns(module, form))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".data-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path(module, form))
}

func (s *FileStore) wrap(op, module, form string, err error) error {
	return &StorageError{Op: op, Module: module, Form: form, Path: s.Path(module, form), Err: err}
}
