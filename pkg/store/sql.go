package store

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-mdaform/pkg/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLStore keeps every collection in one SQLite table. Each row holds a record
// encoded exactly as the file backend writes it; mutations replace the whole
// collection inside a transaction.
type SQLStore struct {
	db   *sql.DB
	opts Options
}

var _ Repository = (*SQLStore)(nil)

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string, options ...Option) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connect sqlite: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &SQLStore{db: db, opts: NewOptions(options...)}, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List implements Repository. Undecodable rows degrade to an empty list.
func (s *SQLStore) List(ctx context.Context, module, form string) ([]Record, error) {
	records, err := s.load(ctx, s.db, module, form)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.opts.Logger.Warn("store: collection unavailable, listing as empty",
			zap.String("module", module),
			zap.String("form", form),
			zap.Error(err),
		)
		return []Record{}, nil
	}
	return records, nil
}

// Upsert implements Repository.
func (s *SQLStore) Upsert(ctx context.Context, module, form string, values map[string]string, rows []model.DetailRow) (Record, error) {
	var saved Record
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		records, err := s.load(ctx, tx, module, form)
		if err != nil {
			return err
		}
		record, records, err := s.opts.mutate(records, s.opts.form(module, form), values, rows)
		if err != nil {
			return fmt.Errorf("%w: id %q", err, values[KeyID])
		}
		saved = record
		return s.replace(ctx, tx, module, form, records)
	})
	if err != nil {
		return Record{}, &StorageError{Op: "upsert", Module: module, Form: form, Err: err}
	}
	return saved, nil
}

// Delete implements Repository.
func (s *SQLStore) Delete(ctx context.Context, module, form, id string) (bool, error) {
	var removed bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		records, err := s.load(ctx, tx, module, form)
		if err != nil {
			return err
		}
		records, removed = removeRecord(records, id)
		if !removed {
			return nil
		}
		return s.replace(ctx, tx, module, form, records)
	})
	if err != nil {
		return false, &StorageError{Op: "delete", Module: module, Form: form, Err: err}
	}
	return removed, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) columns(module, form string) []model.DetailColumn {
	if f := s.opts.form(module, form); f != nil {
		return f.Columns()
	}
	return nil
}

func (s *SQLStore) load(ctx context.Context, q queryer, module, form string) ([]Record, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT payload FROM records WHERE module = ? AND form = ? ORDER BY position`,
		module, form)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	f := s.opts.form(module, form)
	records := []Record{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record, err := decodeRecord([]byte(payload), f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLStore) replace(ctx context.Context, tx *sql.Tx, module, form string, records []Record) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE module = ? AND form = ?`, module, form); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (module, form, position, id, payload) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	columns := s.columns(module, form)
	for i, record := range records {
		var buf bytes.Buffer
		if err := encodeRecord(&buf, record, columns); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, module, form, i, record.ID, buf.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
