// Package store persists form records, one flat collection per (module, form)
// pair. A collection is always read whole and rewritten whole.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// TimestampLayout formats CreatedAt values.
const TimestampLayout = "2006-01-02 15:04:05"

// Reserved keys never stored as ordinary fields.
const (
	KeyID        = "id"
	KeyCreatedAt = "createdAt"
	KeyCreatedBy = "createdBy"
	KeyDetails   = "details"

	legacyCreatedAt = "created_at"
	legacyCreatedBy = "created_by"
)

var reservedKeys = map[string]struct{}{
	KeyID:        {},
	KeyCreatedAt: {},
	KeyCreatedBy: {},
	KeyDetails:   {},
}

// IsReserved reports whether key is a record metadata key. The legacy
// created_at and created_by spellings are metadata only for forms that do not
// declare a field with that name.
func IsReserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

func isLegacyKey(key string) bool {
	return key == legacyCreatedAt || key == legacyCreatedBy
}

// isMetadata reports whether key is stored as record metadata for f.
func isMetadata(key string, f *model.Form) bool {
	if IsReserved(key) {
		return true
	}
	if !isLegacyKey(key) {
		return false
	}
	if f == nil {
		return true
	}
	_, declared := f.Field(key)
	return !declared
}

// Repository is the calling contract shared by every backend.
type Repository interface {
	// Upsert replaces the record named by values["id"] in place, or appends a
	// new record with a fresh id when values carries no id.
	Upsert(ctx context.Context, module, form string, values map[string]string, rows []model.DetailRow) (Record, error)
	// Delete removes the record with id and reports whether one was removed.
	Delete(ctx context.Context, module, form, id string) (bool, error)
	// List returns the collection in storage order.
	List(ctx context.Context, module, form string) ([]Record, error)
}

// Record is one persisted form instance.
type Record struct {
	ID        string
	CreatedAt string
	CreatedBy string
	Fields    map[string]string
	Details   []model.DetailRow

	order      []string
	detailKeys []string
}

// FieldNames returns field keys in their stored order followed by any keys
// added since, sorted.
func (r Record) FieldNames() []string {
	seen := make(map[string]struct{}, len(r.Fields))
	out := make([]string, 0, len(r.Fields))
	for _, name := range r.order {
		if _, ok := r.Fields[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	var rest []string
	for name := range r.Fields {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Value returns a field value, treating metadata keys as fields. A stored
// field named created_at or created_by wins over the legacy metadata alias.
func (r Record) Value(key string) string {
	if isLegacyKey(key) {
		if v, ok := r.Fields[key]; ok {
			return v
		}
	}
	switch key {
	case KeyID:
		return r.ID
	case KeyCreatedAt, legacyCreatedAt:
		return r.CreatedAt
	case KeyCreatedBy, legacyCreatedBy:
		return r.CreatedBy
	}
	return r.Fields[key]
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	out.Details = model.CloneRows(r.Details)
	out.order = append([]string(nil), r.order...)
	out.detailKeys = append([]string(nil), r.detailKeys...)
	return out
}

// FormResolver looks up the current form definition for a pair. Stores use it
// to align detail cells with columns and to order fields on write.
type FormResolver func(module, form string) (*model.Form, bool)

// Options configures a store backend.
type Options struct {
	Clock            func() time.Time
	IDs              IDGenerator
	CreatedBy        string
	InsertUnknownIDs bool
	Forms            FormResolver
	Logger           *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithClock overrides the time source used for CreatedAt and ids.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

// WithIDGenerator overrides how new ids are minted.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *Options) {
		o.IDs = ids
	}
}

// WithCreatedBy stamps new records with an author.
func WithCreatedBy(author string) Option {
	return func(o *Options) {
		o.CreatedBy = author
	}
}

// WithInsertUnknownIDs restores the lenient behaviour where an upsert naming
// an unknown id inserts a new record instead of failing with
// ErrRecordNotFound.
func WithInsertUnknownIDs() Option {
	return func(o *Options) {
		o.InsertUnknownIDs = true
	}
}

// WithSchema resolves forms from a fixed schema.
func WithSchema(schema *model.Schema) Option {
	return func(o *Options) {
		if schema == nil {
			return
		}
		o.Forms = func(module, form string) (*model.Form, bool) {
			f, err := schema.Form(module, form)
			return f, err == nil
		}
	}
}

// WithFormResolver installs a custom resolver, for example one that follows a
// reloading schema.
func WithFormResolver(resolver FormResolver) Option {
	return func(o *Options) {
		o.Forms = resolver
	}
}

// WithLogger sets the logger used for degraded reads and writes.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) Options {
	opts := Options{
		Clock:  time.Now,
		IDs:    TimestampIDs{},
		Logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = TimestampIDs{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func (o Options) form(module, form string) *model.Form {
	if o.Forms == nil {
		return nil
	}
	f, ok := o.Forms(module, form)
	if !ok {
		return nil
	}
	return f
}

// maxIDAttempts bounds retries when a generated id already exists.
const maxIDAttempts = 16

// mutate applies the upsert semantics to an in-memory collection and returns
// the stored record plus the updated collection.
func (o Options) mutate(records []Record, f *model.Form, values map[string]string, rows []model.DetailRow) (Record, []Record, error) {
	fields, order := splitValues(values, f)
	id := strings.TrimSpace(values[KeyID])

	if id != "" {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			records[i].Fields = fields
			records[i].order = order
			records[i].Details = model.CloneRows(rows)
			return records[i].Clone(), records, nil
		}
		if !o.InsertUnknownIDs {
			return Record{}, records, ErrRecordNotFound
		}
	}

	now := o.Clock()
	record := Record{
		ID:        o.uniqueID(records, now),
		CreatedAt: now.Format(TimestampLayout),
		CreatedBy: o.CreatedBy,
		Fields:    fields,
		Details:   model.CloneRows(rows),
		order:     order,
	}
	records = append(records, record)
	return record.Clone(), records, nil
}

func (o Options) uniqueID(records []Record, now time.Time) string {
	taken := make(map[string]struct{}, len(records))
	for _, r := range records {
		taken[r.ID] = struct{}{}
	}
	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id = o.IDs.NewID(now)
		if _, dup := taken[id]; !dup {
			return id
		}
	}
	o.Logger.Warn("store: generated id collides with existing record", zap.String("id", id))
	return id
}

// splitValues drops metadata keys and orders the remaining fields by the form
// definition, unknown keys last.
func splitValues(values map[string]string, f *model.Form) (map[string]string, []string) {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if isMetadata(k, f) {
			continue
		}
		fields[k] = v
	}

	order := make([]string, 0, len(fields))
	if f != nil {
		for _, name := range f.FieldNames() {
			if _, ok := fields[name]; ok {
				order = append(order, name)
			}
		}
	}
	return fields, order
}

func removeRecord(records []Record, id string) ([]Record, bool) {
	for i := range records {
		if records[i].ID == id {
			return append(records[:i], records[i+1:]...), true
		}
	}
	return records, false
}
