package builtin

import (
	"openlines/internal/schema"
	"openlines/pkg/records"
)

// FilterIn keeps only rows whose Field value, in canonical key form, is a
// member of Allowed. Rows without the field are dropped.
type FilterIn struct {
	Field   string
	Allowed []string
}

func (s FilterIn) Apply(t records.Table) (records.Table, error) {
	allowed := make(map[string]struct{}, len(s.Allowed))
	for _, v := range s.Allowed {
		allowed[schema.NormalizeKey(v)] = struct{}{}
	}

	out := t
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !r.Has(s.Field) {
			continue
		}
		if _, ok := allowed[schema.NormalizeKey(r.Text(s.Field))]; ok {
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}

// Project reduces a table to the named columns, in order. Columns the table
// does not have are skipped rather than invented; row fields outside the
// projection are dropped.
type Project struct {
	Columns []string
}

func (s Project) Apply(t records.Table) (records.Table, error) {
	keep := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if t.HasColumn(c) {
			keep = append(keep, c)
		}
	}

	out := records.Table{
		Source:  t.Source,
		Columns: keep,
		Rows:    make([]records.Record, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		nr := make(records.Record, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// DropEmpty removes rows that have no value for Field. The PO join uses it to
// discard purchase-order lines without a receipt date before grouping.
type DropEmpty struct {
	Field string
}

func (s DropEmpty) Apply(t records.Table) (records.Table, error) {
	out := t
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Has(s.Field) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}
