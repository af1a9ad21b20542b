package store

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/goliatone/go-mdaform/pkg/model"
)

// ExportCSV writes records as CSV. Columns are id, createdAt, createdBy when
// the first record carries an author, then the first record's fields, then any
// field only later records carry, sorted. Detail rows are not exported.
func ExportCSV(w io.Writer, records []Record, form *model.Form) error {
	header := exportHeader(records, form)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, record := range records {
		for i, key := range header {
			row[i] = record.Value(key)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportHeader(records []Record, form *model.Form) []string {
	header := []string{KeyID, KeyCreatedAt}
	if len(records) == 0 {
		if form != nil {
			header = append(header, form.FieldNames()...)
		}
		return header
	}

	if records[0].CreatedBy != "" {
		header = append(header, KeyCreatedBy)
	}
	seen := make(map[string]struct{})
	for _, name := range records[0].FieldNames() {
		seen[name] = struct{}{}
		header = append(header, name)
	}
	var rest []string
	for _, record := range records[1:] {
		for name := range record.Fields {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(header, rest...)
}
