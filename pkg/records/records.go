// Package records defines the in-memory tabular model shared by every
// pipeline stage. A Record is a partial row keyed by canonical column name;
// fields may be absent, and every access goes through a presence-checking
// accessor rather than a raw map lookup. A Table pairs an ordered column set
// with its rows so structural checks (which columns exist) stay separate from
// value-level checks (what a given cell holds).
package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row. Values are nil, string, float64, time.Time or
// decimal.Decimal depending on how far coercion has progressed.
type Record map[string]any

// Has reports whether the field is present and non-nil.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the field as a string. The second return is false when the
// field is absent, nil, or not a string.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Text renders the field as display text: the empty string when absent or
// nil, fmt.Sprint otherwise.
func (r Record) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Float returns the field as a float64. String values are parsed; anything
// else that is not already numeric reports false.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Amount returns the field as a decimal. String values are parsed; absent,
// nil or unparseable values report false.
func (r Record) Amount(key string) (decimal.Decimal, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// Time returns the field as a time.Time; false unless a time value is
// actually stored (parsing raw strings is the coerce stage's job).
func (r Record) Time(key string) (time.Time, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// Clone returns a shallow copy of the record. Values are shared; the map is
// not, so stages can add or rename fields without mutating their input.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns plus zero or more rows. Source names the
// extract the table came from and is carried into diagnostics.
type Table struct {
	Source  string
	Columns []string
	Rows    []Record
}

// HasColumn reports whether name is a declared column of the table.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithColumns returns a copy of the table whose column list additionally
// contains each named column (appended in order when missing). Rows are
// shared with the receiver.
func (t Table) WithColumns(names ...string) Table {
	out := t
	out.Columns = append([]string(nil), t.Columns...)
	for _, n := range names {
		if !out.HasColumn(n) {
			out.Columns = append(out.Columns, n)
		}
	}
	return out
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }
