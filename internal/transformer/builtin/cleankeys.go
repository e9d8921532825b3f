package builtin

import (
	"openlines/internal/schema"
	"openlines/pkg/records"
)

// CleanKeys coerces the named fields to canonical join-key form: text,
// surrounding whitespace stripped, uppercased. Fields absent from a row, or
// absent from the table entirely, are left alone.
type CleanKeys struct {
	Fields []string
}

func (s CleanKeys) Apply(t records.Table) (records.Table, error) {
	out := t
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := r.Clone()
		for _, f := range s.Fields {
			if !nr.Has(f) {
				continue
			}
			nr[f] = schema.NormalizeKey(nr.Text(f))
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
