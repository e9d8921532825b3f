// Package builtin contains the reusable table stages the pipeline is built
// from: header renaming, join-key cleanup, structural contracts, row filters
// and value coercion.
package builtin

import (
	"openlines/pkg/records"
)

// Rename maps column names onto canonical field names. Columns without a map
// entry keep their name; map entries whose column is absent are silently
// skipped.
//
// Fallback entries rename only when nothing else produced their target: an
// extract exporting both the preferred header and its fallback keeps the
// fallback column under its own name, so the preferred value is the one that
// reaches the canonical field. When two columns resolve to the same target
// anyway, the earlier column wins and the later one is dropped, keeping the
// outcome independent of row-map iteration order.
type Rename struct {
	Map      map[string]string
	Fallback map[string]string
}

// Targets resolves the destination name of each column, in source order. A
// dropped column (its target already taken by an earlier column) resolves to
// the empty string.
func (s Rename) Targets(cols []string) []string {
	out := make([]string, len(cols))
	taken := make(map[string]struct{}, len(cols))

	claim := func(i int, to string) {
		if _, dup := taken[to]; dup {
			return
		}
		taken[to] = struct{}{}
		out[i] = to
	}

	for i, c := range cols {
		if _, fb := s.Fallback[c]; fb {
			continue
		}
		to := c
		if mapped, ok := s.Map[c]; ok && mapped != "" {
			to = mapped
		}
		claim(i, to)
	}
	for i, c := range cols {
		fb, ok := s.Fallback[c]
		if !ok {
			continue
		}
		if _, have := taken[fb]; !have {
			claim(i, fb)
			continue
		}
		claim(i, c)
	}
	return out
}

func (s Rename) Apply(t records.Table) (records.Table, error) {
	targets := s.Targets(t.Columns)

	out := records.Table{
		Source: t.Source,
		Rows:   make([]records.Record, 0, len(t.Rows)),
	}
	renamed := make(map[string]string, len(t.Columns))
	dropped := make(map[string]struct{})
	for i, c := range t.Columns {
		if targets[i] == "" {
			dropped[c] = struct{}{}
			continue
		}
		out.Columns = append(out.Columns, targets[i])
		renamed[c] = targets[i]
	}

	for _, r := range t.Rows {
		nr := make(records.Record, len(r))
		for k, v := range r {
			if _, skip := dropped[k]; skip {
				continue
			}
			to, ok := renamed[k]
			if !ok {
				to = k
			}
			nr[to] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
