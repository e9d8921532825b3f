package pipeline

import (
	"testing"
	"time"

	"openlines/internal/schema"
	"openlines/pkg/records"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testResolver(now time.Time) Resolver {
	return Resolver{
		LeadDays:       4,
		FallbackMonths: 4,
		Marker:         "Sem Cobertura",
		Now:            fixedNow(now),
	}
}

/*
TestResolverStatus covers the logistics-status resolution:

  - ACTIVATED and COMPLETED picking tasks map to their Portuguese labels.
  - Any other (or absent) picking status falls back to the sales status.
*/
func TestResolverStatus(t *testing.T) {
	tests := []struct {
		name string
		row  records.Record
		want string
	}{
		{
			name: "activated_wins",
			row: records.Record{
				schema.FieldSalesStatus:   "OPEN ORDER",
				schema.FieldPickingStatus: "ACTIVATED",
			},
			want: "Em Picking (ATIVO)",
		},
		{
			name: "completed_wins",
			row: records.Record{
				schema.FieldSalesStatus:   "OPEN ORDER",
				schema.FieldPickingStatus: "COMPLETED",
			},
			want: "Picking Concluído",
		},
		{
			name: "case_and_padding_ignored",
			row: records.Record{
				schema.FieldSalesStatus:   "OPEN ORDER",
				schema.FieldPickingStatus: " activated ",
			},
			want: "Em Picking (ATIVO)",
		},
		{
			name: "no_picking_falls_back_to_sales_status",
			row: records.Record{
				schema.FieldSalesStatus: "OPEN ORDER",
			},
			want: "OPEN ORDER",
		},
		{
			name: "untracked_status_falls_back",
			row: records.Record{
				schema.FieldSalesStatus:   "OPEN ORDER",
				schema.FieldPickingStatus: "CANCELLED",
			},
			want: "OPEN ORDER",
		},
	}

	r := testResolver(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Apply(records.Table{Rows: []records.Record{tc.row}})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := out.Rows[0].Text(schema.FieldLogisticsStatus); got != tc.want {
				t.Fatalf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

/*
TestResolverDates covers arrival display and invoice projection:

  - With an arrival date: display dd/mm/yyyy, invoice = arrival + 4 days.
  - Without one: display is the no-coverage marker, invoice = first day of
    the run month + 4 months, month overflow wrapping the year.
*/
func TestResolverDates(t *testing.T) {
	arrival := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("with_arrival", func(t *testing.T) {
		r := testResolver(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		out, err := r.Apply(records.Table{Rows: []records.Record{
			{schema.FieldArrivalDate: arrival},
		}})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		row := out.Rows[0]
		if got := row.Text(schema.ColArrivalDisplay); got != "01/02/2025" {
			t.Errorf("arrival display = %q", got)
		}
		want := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
		if got, _ := row.Time(schema.ColInvoiceDate); !got.Equal(want) {
			t.Errorf("invoice date = %v, want %v", got, want)
		}
	})

	t.Run("without_arrival", func(t *testing.T) {
		r := testResolver(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		out, err := r.Apply(records.Table{Rows: []records.Record{
			{schema.FieldSalesStatus: "OPEN ORDER"},
		}})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		row := out.Rows[0]
		if got := row.Text(schema.ColArrivalDisplay); got != "Sem Cobertura" {
			t.Errorf("arrival display = %q", got)
		}
		want := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		if got, _ := row.Time(schema.ColInvoiceDate); !got.Equal(want) {
			t.Errorf("fallback invoice date = %v, want %v", got, want)
		}
	})

	t.Run("fallback_wraps_year", func(t *testing.T) {
		r := testResolver(time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC))
		out, err := r.Apply(records.Table{Rows: []records.Record{{}}})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		if got, _ := out.Rows[0].Time(schema.ColInvoiceDate); !got.Equal(want) {
			t.Errorf("fallback invoice date = %v, want %v", got, want)
		}
	})
}

// Fallback-date monotonic property: run dates one month apart shift the
// fallback by exactly one month on identical input.
func TestResolverFallbackMonotonic(t *testing.T) {
	run1 := testResolver(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	run2 := testResolver(time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC))

	out1, _ := run1.Apply(records.Table{Rows: []records.Record{{}}})
	out2, _ := run2.Apply(records.Table{Rows: []records.Record{{}}})

	d1, _ := out1.Rows[0].Time(schema.ColInvoiceDate)
	d2, _ := out2.Rows[0].Time(schema.ColInvoiceDate)
	if !d1.AddDate(0, 1, 0).Equal(d2) {
		t.Fatalf("fallback dates %v and %v are not one month apart", d1, d2)
	}
}
