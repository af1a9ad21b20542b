package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// decodeCollection reads a collection payload. A bare object is a legacy
// single-record save and becomes a one-element list. Detail cells are aligned
// with the form's columns when known, otherwise kept in document key order.
func decodeCollection(data []byte, f *model.Form) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Record{}, nil
	}

	var items []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
		}
	case '{':
		items = []json.RawMessage{json.RawMessage(data)}
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformedCollection)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		record, err := decodeRecord(item, f)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedCollection, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

type pair struct {
	key   string
	value json.RawMessage
}

// objectPairs decodes a JSON object keeping key order.
func objectPairs(raw json.RawMessage) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object")
	}
	var out []pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		out = append(out, pair{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage, f *model.Form) (Record, error) {
	pairs, err := objectPairs(raw)
	if err != nil {
		return Record{}, err
	}
	var columns []model.DetailColumn
	if f != nil {
		columns = f.Columns()
	}

	record := Record{Fields: make(map[string]string, len(pairs))}
	var currentCreatedAt, currentCreatedBy bool
	for _, p := range pairs {
		if isLegacyKey(p.key) && !isMetadata(p.key, f) {
			if _, dup := record.Fields[p.key]; !dup {
				record.order = append(record.order, p.key)
			}
			record.Fields[p.key] = scalar(p.value)
			continue
		}
		switch p.key {
		case KeyID:
			record.ID = scalar(p.value)
		case KeyCreatedAt:
			record.CreatedAt = scalar(p.value)
			currentCreatedAt = true
		case legacyCreatedAt:
			if !currentCreatedAt {
				record.CreatedAt = scalar(p.value)
			}
		case KeyCreatedBy:
			record.CreatedBy = scalar(p.value)
			currentCreatedBy = true
		case legacyCreatedBy:
			if !currentCreatedBy {
				record.CreatedBy = scalar(p.value)
			}
		case KeyDetails:
			rows, keys, err := decodeRows(p.value, columns)
			if err != nil {
				return Record{}, fmt.Errorf("details: %w", err)
			}
			record.Details = rows
			record.detailKeys = keys
		default:
			if _, dup := record.Fields[p.key]; !dup {
				record.order = append(record.order, p.key)
			}
			record.Fields[p.key] = scalar(p.value)
		}
	}
	return record, nil
}

// decodeRows accepts rows stored as objects keyed by column name or as plain
// arrays. It returns the key order seen when no columns were supplied.
func decodeRows(raw json.RawMessage, columns []model.DetailColumn) ([]model.DetailRow, []string, error) {
	if isNull(raw) {
		return nil, nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, err
	}

	var keys []string
	seenKeys := make(map[string]struct{})
	rows := make([]model.DetailRow, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '[':
			var cells []json.RawMessage
			if err := json.Unmarshal(trimmed, &cells); err != nil {
				return nil, nil, err
			}
			row := make(model.DetailRow, len(cells))
			for i, cell := range cells {
				row[i] = scalar(cell)
			}
			rows = append(rows, row)
		case '{':
			pairs, err := objectPairs(trimmed)
			if err != nil {
				return nil, nil, err
			}
			if len(columns) > 0 {
				byName := make(map[string]string, len(pairs))
				for _, p := range pairs {
					byName[p.key] = scalar(p.value)
				}
				row := make(model.DetailRow, len(columns))
				for i, col := range columns {
					row[i] = byName[col.Name]
				}
				rows = append(rows, row)
				continue
			}
			row := make(model.DetailRow, 0, len(pairs))
			for _, p := range pairs {
				if _, ok := seenKeys[p.key]; !ok {
					seenKeys[p.key] = struct{}{}
					keys = append(keys, p.key)
				}
				row = append(row, scalar(p.value))
			}
			rows = append(rows, row)
		default:
			return nil, nil, fmt.Errorf("row must be an object or array")
		}
	}
	return rows, keys, nil
}

// scalar coerces any JSON value to the string stored in a record. Numbers
// keep their literal text, null becomes "", composites stay compact JSON.
func scalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || isNull(trimmed) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// encodeCollection renders records as an indented UTF-8 JSON array with keys
// in a stable order: id, createdAt, createdBy, fields, details.
func encodeCollection(records []Record, columns []model.DetailColumn) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, record := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeRecord(&buf, record, columns); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func encodeRecord(buf *bytes.Buffer, record Record, columns []model.DetailColumn) error {
	w := objectWriter{buf: buf}
	w.open()
	w.field(KeyID, record.ID)
	w.field(KeyCreatedAt, record.CreatedAt)
	if record.CreatedBy != "" {
		w.field(KeyCreatedBy, record.CreatedBy)
	}
	for _, name := range record.FieldNames() {
		w.field(name, record.Fields[name])
	}
	if record.Details != nil {
		w.key(KeyDetails)
		buf.WriteByte('[')
		names := detailNames(record, columns)
		for i, row := range record.Details {
			if i > 0 {
				buf.WriteByte(',')
			}
			rw := objectWriter{buf: buf}
			rw.open()
			for idx, cell := range row {
				if idx >= len(names) {
					break
				}
				rw.field(names[idx], cell)
			}
			rw.close()
		}
		buf.WriteByte(']')
	}
	w.close()
	return w.err
}

// detailNames picks the object keys for detail cells: declared columns, then
// keys read from the file, then positional names for anything left.
func detailNames(record Record, columns []model.DetailColumn) []string {
	width := 0
	for _, row := range record.Details {
		if len(row) > width {
			width = len(row)
		}
	}
	names := make([]string, 0, width)
	for _, col := range columns {
		names = append(names, col.Name)
	}
	if len(columns) == 0 {
		names = append(names, record.detailKeys...)
	}
	for i := len(names); i < width; i++ {
		names = append(names, "col"+strconv.Itoa(i+1))
	}
	return names
}

type objectWriter struct {
	buf   *bytes.Buffer
	first bool
	err   error
}

func (w *objectWriter) open() {
	w.buf.WriteByte('{')
	w.first = true
}

func (w *objectWriter) close() {
	w.buf.WriteByte('}')
}

func (w *objectWriter) key(k string) {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	w.string(k)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k, v string) {
	w.key(k)
	w.string(v)
}

func (w *objectWriter) string(s string) {
	if w.err != nil {
		return
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		w.err = err
		return
	}
	w.buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// EncodeRecord renders one record the way collections store it, with detail
// rows keyed by column name.
func EncodeRecord(record Record, columns []model.DetailColumn) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := encodeRecord(&buf, record, columns); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
