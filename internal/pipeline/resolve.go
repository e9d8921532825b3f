package pipeline

import (
	"time"

	"openlines/internal/schema"
	"openlines/pkg/records"
)

// Logistics-status labels shown to planners. The Portuguese wording is part
// of the downstream contract and must not be translated.
const (
	labelPickingActive = "Em Picking (ATIVO)"
	labelPickingDone   = "Picking Concluído"
)

// arrivalDisplayLayout renders arrival dates the way the planning team reads
// them, day first.
const arrivalDisplayLayout = "02/01/2006"

// Resolver derives the three presentation columns of the artifact from the
// joined row: the logistics status label, the arrival display cell and the
// projected invoice date.
//
// Resolution rules, per row:
//
//   - picking_status ACTIVATED or COMPLETED wins over the sales status and
//     maps to its Portuguese label; otherwise the raw sales status carries
//     through.
//   - An arrival date projects the invoice date LeadDays later and renders
//     as dd/mm/yyyy; without one the invoice date falls back to the first
//     day of the run month plus FallbackMonths, and the arrival cell shows
//     the no-coverage marker.
//
// Now is the run clock; injecting it keeps the fallback date deterministic
// under test.
type Resolver struct {
	LeadDays       int
	FallbackMonths int
	Marker         string
	Now            func() time.Time
}

func (s Resolver) Apply(t records.Table) (records.Table, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	fallback := firstOfMonth(now(), s.FallbackMonths)

	out := t.WithColumns(
		schema.FieldLogisticsStatus,
		schema.ColArrivalDisplay,
		schema.ColInvoiceDate,
	)
	out.Rows = make([]records.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		nr := r.Clone()
		nr[schema.FieldLogisticsStatus] = s.status(r)

		if arrival, ok := r.Time(schema.FieldArrivalDate); ok {
			nr[schema.ColArrivalDisplay] = arrival.Format(arrivalDisplayLayout)
			nr[schema.ColInvoiceDate] = arrival.AddDate(0, 0, s.LeadDays)
		} else {
			nr[schema.ColArrivalDisplay] = s.Marker
			nr[schema.ColInvoiceDate] = fallback
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}

func (s Resolver) status(r records.Record) string {
	switch schema.NormalizeKey(r.Text(schema.FieldPickingStatus)) {
	case "ACTIVATED":
		return labelPickingActive
	case "COMPLETED":
		return labelPickingDone
	}
	return r.Text(schema.FieldSalesStatus)
}

// firstOfMonth returns midnight on day 1 of t's month shifted by months.
// time.Date normalizes month overflow, so November+4 lands in March.
func firstOfMonth(t time.Time, months int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
}
