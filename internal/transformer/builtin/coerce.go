package builtin

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"openlines/pkg/records"
)

// Coerce converts raw string cells into typed values. A cell that fails to
// parse becomes a sentinel (nil for dates, zero for numbers) so a single bad
// value never fails the batch.
//
// Dates try each layout in order. Amounts become decimal.Decimal; Numbers
// become float64.
type Coerce struct {
	Dates   []string
	Layouts []string
	Amounts []string
	Numbers []string
}

func (s Coerce) Apply(t records.Table) (records.Table, error) {
	out := t
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := r.Clone()
		for _, f := range s.Dates {
			if v, ok := nr[f]; ok && v != nil {
				nr[f] = s.parseDate(v)
			}
		}
		for _, f := range s.Amounts {
			if v, ok := nr[f]; ok && v != nil {
				nr[f] = parseAmount(v)
			}
		}
		for _, f := range s.Numbers {
			if v, ok := nr[f]; ok && v != nil {
				nr[f] = parseNumber(v)
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

// parseDate returns a time.Time on success and nil otherwise (the null-date
// sentinel).
func (s Coerce) parseDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		raw := strings.TrimSpace(d)
		for _, layout := range s.Layouts {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return t
			}
		}
	}
	return nil
}

// parseAmount returns a decimal.Decimal, zero when unparseable.
func parseAmount(v any) decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if d, err := decimal.NewFromString(normalizeNumeric(n)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// parseNumber returns a float64, zero when unparseable.
func parseNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if d, err := decimal.NewFromString(normalizeNumeric(n)); err == nil {
			return d.InexactFloat64()
		}
	}
	return 0
}

// normalizeNumeric strips thousands separators and whitespace from a raw
// numeric cell. Both "1.234,56" and "1,234.56" normalize to "1234.56"; the
// separator appearing last is taken as the decimal mark.
func normalizeNumeric(s string) string {
	s = strings.TrimSpace(s)
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}
