package webui

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"openlines/internal/parser"
	"openlines/internal/parser/xlsx"
	"openlines/internal/schema"
	"openlines/pkg/records"
)

// artifactDateLayout is how the sink renders date cells.
const artifactDateLayout = "2006-01-02"

// Dataset is a loaded reconciliation artifact. It is read once at startup and
// never mutated, so handlers can share it without locking.
type Dataset struct {
	table records.Table
}

// LoadDataset reads the xlsx artifact at path. The two Portuguese display
// headers are preserved verbatim; everything else is already canonical.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	p := xlsx.New(parser.Options{
		Source: "artifact",
		HeaderMap: map[string]string{
			schema.ColArrivalDisplay: schema.ColArrivalDisplay,
			schema.ColInvoiceDate:    schema.ColInvoiceDate,
		},
	})
	t, _, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	return &Dataset{table: t}, nil
}

// Len returns the number of open lines in the artifact.
func (d *Dataset) Len() int { return d.table.Len() }

// Customers returns the sorted distinct customer names.
func (d *Dataset) Customers() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range d.table.Rows {
		n, ok := r.String(schema.FieldCustomerName)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Filter returns the customer's lines inside the optional order-date range,
// sorted by order date ascending. Zero from/to bounds are open.
func (d *Dataset) Filter(customer string, from, to time.Time) []records.Record {
	var rows []records.Record
	for _, r := range d.table.Rows {
		if r.Text(schema.FieldCustomerName) != customer {
			continue
		}
		od, ok := orderDate(r)
		if ok {
			if !from.IsZero() && od.Before(from) {
				continue
			}
			if !to.IsZero() && od.After(to) {
				continue
			}
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, iok := orderDate(rows[i])
		dj, jok := orderDate(rows[j])
		if iok != jok {
			return jok // undated rows sort last
		}
		return di.Before(dj)
	})
	return rows
}

// Summary aggregates the KPI figures over a filtered row set.
type Summary struct {
	Account     string
	Responsible string
	Total       decimal.Decimal
	Lines       int
	Orders      int
}

// Summarize computes the KPIs: total open amount, line count, distinct order
// count, and the account/responsible taken from the first line.
func Summarize(rows []records.Record) Summary {
	s := Summary{Lines: len(rows)}
	orders := make(map[string]struct{})
	for i, r := range rows {
		if i == 0 {
			s.Account = r.Text(schema.FieldCustAccount)
			s.Responsible = r.Text(schema.FieldSalesResponsible)
		}
		if a, ok := r.Amount(schema.FieldSalesAmount); ok {
			s.Total = s.Total.Add(a)
		}
		if id, ok := r.String(schema.FieldSalesID); ok {
			orders[id] = struct{}{}
		}
	}
	s.Orders = len(orders)
	return s
}

// StockBucket classifies a line's available stock for display.
func StockBucket(r records.Record) string {
	if v, ok := r.Float(schema.FieldStockAvailable); ok && v > 0 {
		return "OK"
	}
	return "Sem Estoque"
}

func orderDate(r records.Record) (time.Time, bool) {
	if t, ok := r.Time(schema.FieldOrderDate); ok {
		return t, true
	}
	raw, ok := r.String(schema.FieldOrderDate)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(artifactDateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
