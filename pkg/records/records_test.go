package records

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

/*
TestRecordAccessors covers the typed field accessors:

  - Has distinguishes absent and nil from present.
  - String reports only real string values; Text never fails.
  - Float and Amount parse string cells, pass numeric types through and
    report false on garbage.
  - Time reports only stored time.Time values.
*/
func TestRecordAccessors(t *testing.T) {
	when := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	r := Record{
		"name":   "Acme",
		"qty":    "12",
		"amount": "1234.56",
		"dec":    decimal.NewFromInt(7),
		"f":      3.5,
		"date":   when,
		"bad":    "not-a-number",
		"nil":    nil,
	}

	if !r.Has("name") || r.Has("nil") || r.Has("missing") {
		t.Fatalf("Has: presence misreported")
	}

	if s, ok := r.String("name"); !ok || s != "Acme" {
		t.Fatalf("String(name) = %q, %v", s, ok)
	}
	if _, ok := r.String("f"); ok {
		t.Fatalf("String(f): want false for non-string")
	}
	if got := r.Text("missing"); got != "" {
		t.Fatalf("Text(missing) = %q, want empty", got)
	}
	if got := r.Text("f"); got == "" {
		t.Fatalf("Text(f): want rendered value")
	}

	if v, ok := r.Float("qty"); !ok || v != 12 {
		t.Fatalf("Float(qty) = %v, %v", v, ok)
	}
	if v, ok := r.Float("dec"); !ok || v != 7 {
		t.Fatalf("Float(dec) = %v, %v", v, ok)
	}
	if _, ok := r.Float("bad"); ok {
		t.Fatalf("Float(bad): want false")
	}

	if a, ok := r.Amount("amount"); !ok || !a.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("Amount(amount) = %v, %v", a, ok)
	}
	if a, ok := r.Amount("f"); !ok || !a.Equal(decimal.NewFromFloat(3.5)) {
		t.Fatalf("Amount(f) = %v, %v", a, ok)
	}
	if _, ok := r.Amount("bad"); ok {
		t.Fatalf("Amount(bad): want false")
	}

	if d, ok := r.Time("date"); !ok || !d.Equal(when) {
		t.Fatalf("Time(date) = %v, %v", d, ok)
	}
	if _, ok := r.Time("name"); ok {
		t.Fatalf("Time(name): want false")
	}
}

func TestRecordClone(t *testing.T) {
	orig := Record{"a": "1"}
	c := orig.Clone()
	c["b"] = "2"

	if orig.Has("b") {
		t.Fatalf("Clone shares map with original")
	}
	if c.Text("a") != "1" {
		t.Fatalf("Clone lost field a")
	}
}

/*
TestTableWithColumns checks column-set extension:

  - New names append in order, existing names are not duplicated.
  - The receiver's column slice is not mutated.
*/
func TestTableWithColumns(t *testing.T) {
	base := Table{Source: "sales", Columns: []string{"a", "b"}}

	got := base.WithColumns("b", "c", "d")
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Fatalf("WithColumns = %v, want %v", got.Columns, want)
	}
	if !reflect.DeepEqual(base.Columns, []string{"a", "b"}) {
		t.Fatalf("WithColumns mutated receiver: %v", base.Columns)
	}
	if !got.HasColumn("c") || got.HasColumn("x") {
		t.Fatalf("HasColumn misreported")
	}
}
