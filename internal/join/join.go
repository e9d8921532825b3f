// Package join implements the left-outer-join primitives of the pipeline.
// Every join preserves each row of its left-hand side; the two variants
// differ only in right-side cardinality:
//
//   - Left fans out: a left row matching n right rows yields n output rows.
//     This is the picking join's accepted ambiguity.
//   - LeftOne is many-to-one: at most one right row (the first encountered in
//     right-table order) contributes, so the left row count is preserved.
//
// Composite keys are built from the canonical text form of the key fields; a
// row missing any key field never matches.
package join

import (
	"strings"
	"time"

	"openlines/pkg/records"
)

// keySep separates key fields inside a composite key. Unit Separator cannot
// occur in cleaned join keys.
const keySep = "\x1f"

// compositeKey builds the lookup key for rec over the on fields. ok is false
// when any field is absent, which excludes the row from matching.
func compositeKey(rec records.Record, on []string) (string, bool) {
	parts := make([]string, len(on))
	for i, f := range on {
		if !rec.Has(f) {
			return "", false
		}
		parts[i] = rec.Text(f)
	}
	return strings.Join(parts, keySep), true
}

// index groups the rows of t by composite key. Rows missing a key field are
// ignored.
func index(t records.Table, on []string) map[string][]records.Record {
	idx := make(map[string][]records.Record, len(t.Rows))
	for _, r := range t.Rows {
		k, ok := compositeKey(r, on)
		if !ok {
			continue
		}
		idx[k] = append(idx[k], r)
	}
	return idx
}

// take copies the named fields from src into dst, skipping absent ones.
func take(dst records.Record, src records.Record, fields []string) {
	for _, f := range fields {
		if v, ok := src[f]; ok {
			dst[f] = v
		}
	}
}

// Left performs a fan-out left outer join of left against right on the given
// key fields, carrying the named right-side fields into matched rows.
// Unmatched left rows pass through with those fields absent. Output order is
// left order, with fan-out rows in right-table order.
func Left(left, right records.Table, on []string, fields []string) records.Table {
	idx := index(right, on)

	out := left.WithColumns(fields...)
	out.Rows = make([]records.Record, 0, len(left.Rows))
	for _, l := range left.Rows {
		k, ok := compositeKey(l, on)
		if !ok {
			out.Rows = append(out.Rows, l.Clone())
			continue
		}
		matches := idx[k]
		if len(matches) == 0 {
			out.Rows = append(out.Rows, l.Clone())
			continue
		}
		for _, m := range matches {
			nr := l.Clone()
			take(nr, m, fields)
			out.Rows = append(out.Rows, nr)
		}
	}
	return out
}

// LeftOne performs a many-to-one left outer join: each left row gains the
// named fields from the first matching right row, and the output row count
// always equals the left row count.
func LeftOne(left, right records.Table, on []string, fields []string) records.Table {
	idx := make(map[string]records.Record, len(right.Rows))
	for _, r := range right.Rows {
		k, ok := compositeKey(r, on)
		if !ok {
			continue
		}
		if _, dup := idx[k]; !dup {
			idx[k] = r
		}
	}

	out := left.WithColumns(fields...)
	out.Rows = make([]records.Record, 0, len(left.Rows))
	for _, l := range left.Rows {
		nr := l.Clone()
		if k, ok := compositeKey(l, on); ok {
			if m, ok := idx[k]; ok {
				take(nr, m, fields)
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// MinDate groups t by the key field and keeps, per key, a single row holding
// the earliest time value of dateField. Rows whose dateField is absent or not
// a time are ignored. Output order follows first appearance of each key.
func MinDate(t records.Table, key, dateField string) records.Table {
	out := records.Table{
		Source:  t.Source,
		Columns: []string{key, dateField},
	}
	earliest := make(map[string]time.Time, len(t.Rows))
	order := make([]string, 0, len(t.Rows))

	for _, r := range t.Rows {
		k, ok := r.String(key)
		if !ok {
			continue
		}
		d, ok := r.Time(dateField)
		if !ok {
			continue
		}
		cur, seen := earliest[k]
		if !seen {
			order = append(order, k)
			earliest[k] = d
			continue
		}
		if d.Before(cur) {
			earliest[k] = d
		}
	}

	out.Rows = make([]records.Record, 0, len(order))
	for _, k := range order {
		out.Rows = append(out.Rows, records.Record{
			key:       k,
			dateField: earliest[k],
		})
	}
	return out
}
