package join

import (
	"reflect"
	"testing"
	"time"

	"openlines/pkg/records"
)

/*
TestLeft covers the fan-out join:

  - A left row matching n right rows yields n output rows, in right-table
    order, each carrying the requested right fields.
  - Unmatched left rows pass through once with the fields absent.
  - A left row missing a key field never matches.
  - Only the requested fields cross over.
*/
func TestLeft(t *testing.T) {
	left := records.Table{
		Source:  "sales",
		Columns: []string{"salesid", "itemid", "amount"},
		Rows: []records.Record{
			{"salesid": "SO-1", "itemid": "A", "amount": "500"},
			{"salesid": "SO-2", "itemid": "B", "amount": "10"},
			{"itemid": "C", "amount": "1"},
		},
	}
	right := records.Table{
		Source:  "picking",
		Columns: []string{"salesid", "itemid", "route", "secret"},
		Rows: []records.Record{
			{"salesid": "SO-1", "itemid": "A", "route": "R1", "secret": "x"},
			{"salesid": "SO-1", "itemid": "A", "route": "R2", "secret": "y"},
		},
	}

	out := Left(left, right, []string{"salesid", "itemid"}, []string{"route"})

	if out.Len() != 4 {
		t.Fatalf("rows = %d, want 4 (fan-out of 2 + 2 pass-through)", out.Len())
	}
	if got := []any{out.Rows[0]["route"], out.Rows[1]["route"]}; !reflect.DeepEqual(got, []any{"R1", "R2"}) {
		t.Fatalf("fan-out routes = %v", got)
	}
	if out.Rows[0].Has("secret") {
		t.Fatalf("field outside the carry list crossed the join")
	}
	for _, i := range []int{2, 3} {
		if out.Rows[i].Has("route") {
			t.Fatalf("row %d: unmatched row gained route", i)
		}
	}
	if !out.HasColumn("route") {
		t.Fatalf("joined column not declared")
	}
}

/*
TestLeftOne covers the many-to-one join: row count is always preserved and
only the first matching right row contributes.
*/
func TestLeftOne(t *testing.T) {
	left := records.Table{
		Columns: []string{"itemid"},
		Rows: []records.Record{
			{"itemid": "A"},
			{"itemid": "A"},
			{"itemid": "Z"},
		},
	}
	right := records.Table{
		Columns: []string{"itemid", "stock_available"},
		Rows: []records.Record{
			{"itemid": "A", "stock_available": 5.0},
			{"itemid": "A", "stock_available": 99.0},
		},
	}

	out := LeftOne(left, right, []string{"itemid"}, []string{"stock_available"})

	if out.Len() != left.Len() {
		t.Fatalf("rows = %d, want %d", out.Len(), left.Len())
	}
	for _, i := range []int{0, 1} {
		if got, _ := out.Rows[i].Float("stock_available"); got != 5 {
			t.Errorf("row %d stock = %v, want first match 5", i, got)
		}
	}
	if out.Rows[2].Has("stock_available") {
		t.Errorf("unmatched row gained stock")
	}
}

/*
TestMinDate covers the per-key earliest-date reduction used for purchase
order arrivals: one row per key, earliest date wins regardless of row order,
rows without a usable date are ignored.
*/
func TestMinDate(t *testing.T) {
	d := func(day int) time.Time {
		return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
	}
	in := records.Table{
		Columns: []string{"itemid", "requested_receipt_date"},
		Rows: []records.Record{
			{"itemid": "A", "requested_receipt_date": d(10)},
			{"itemid": "B", "requested_receipt_date": d(20)},
			{"itemid": "A", "requested_receipt_date": d(1)},
			{"itemid": "A"},
			{"requested_receipt_date": d(2)},
		},
	}

	out := MinDate(in, "itemid", "requested_receipt_date")

	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if got, _ := out.Rows[0].Time("requested_receipt_date"); !got.Equal(d(1)) {
		t.Errorf("A earliest = %v, want %v", got, d(1))
	}
	if got := out.Rows[0].Text("itemid"); got != "A" {
		t.Errorf("first key = %q, want first-appearance order", got)
	}
	if got, _ := out.Rows[1].Time("requested_receipt_date"); !got.Equal(d(20)) {
		t.Errorf("B earliest = %v", got)
	}
}
