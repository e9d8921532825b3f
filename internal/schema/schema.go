// Package schema fixes the canonical column vocabulary of the pipeline and
// the per-source contracts: how each extract's headers rename onto canonical
// fields, which fields are join keys, and which columns a source cannot be
// processed without.
package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"openlines/pkg/records"
)

// Canonical field names. Every stage downstream of the normalizer speaks in
// these; raw extract headers never leak past it.
const (
	FieldSalesID          = "salesid"
	FieldItemID           = "itemid"
	FieldCustAccount      = "cust_account_id"
	FieldSalesAmount      = "sales_amount"
	FieldOpenQty          = "open_qty_order"
	FieldOrderDate        = "order_date"
	FieldSalesStatus      = "sales_status"
	FieldPickingRoute     = "picking_route"
	FieldPickingStatus    = "picking_status"
	FieldPickingDate      = "picking_date"
	FieldPickingQty       = "picking_qty"
	FieldStockAvailable   = "stock_available"
	FieldCoverageStatus   = "coverage_status"
	FieldCustomerName     = "customer_name"
	FieldCustomerGroup    = "customer_group"
	FieldSalesResponsible = "sales_responsible"
	FieldReceiptDate      = "requested_receipt_date"

	// Derived fields added by the resolver.
	FieldArrivalDate     = "arrival_date"
	FieldLogisticsStatus = "status_logistica"
	FieldSalesAmountBRL  = "sales_amount_brl"
)

// Output column names kept verbatim for downstream consumers of the artifact.
const (
	ColArrivalDisplay = "Chegada Importação"
	ColInvoiceDate    = "Data prevista para fatura"
)

// Source describes one input extract: its logical name, default filename,
// header rename maps, join-key fields (trim/uppercase normalized), and the
// canonical columns the pipeline cannot run without.
//
// Fallback holds alternate headers some exports use instead of the preferred
// one; a fallback renames only when the preferred header is absent, so an
// extract carrying both keeps the preferred value.
type Source struct {
	Name     string
	File     string
	Rename   map[string]string
	Fallback map[string]string
	Keys     []string
	Required []string
}

// The five extracts, in pipeline order. Rename maps are keyed by the slug
// form of the upstream export headers (what the parsers emit); a header
// without an entry keeps its slug. Identity entries document headers that
// already slug onto their canonical name.
var (
	Sales = Source{
		Name: "sales",
		File: "CHINTSalesDetail.xlsx",
		Rename: map[string]string{
			"salesid":      FieldSalesID, // "SalesId"
			"item_id":      FieldItemID,
			"cust_account": FieldCustAccount,
			"sales_amount": FieldSalesAmount,
			"open_qty":     FieldOpenQty,
			"create_date":  FieldOrderDate,
			"sales_status": FieldSalesStatus,
		},
		Fallback: map[string]string{
			"status_venda": FieldSalesStatus, // localized export header
		},
		Keys:     []string{FieldSalesID, FieldItemID, FieldCustAccount},
		Required: []string{FieldSalesID, FieldItemID, FieldSalesStatus},
	}

	Picking = Source{
		Name: "picking",
		File: "SalesPickingList.xlsx",
		Rename: map[string]string{
			"number":                FieldSalesID,
			"item_number":           FieldItemID,
			"route":                 FieldPickingRoute,
			"handling_status":       FieldPickingStatus,
			"created_date_and_time": FieldPickingDate,
			"quantity":              FieldPickingQty,
		},
		Keys: []string{FieldSalesID, FieldItemID},
		Required: []string{
			FieldSalesID, FieldItemID, FieldPickingStatus,
			FieldPickingRoute, FieldPickingQty, FieldPickingDate,
		},
	}

	Stock = Source{
		Name: "stock",
		File: "OnHandInventory.xlsx",
		Rename: map[string]string{
			"item_number":     FieldItemID,
			"total_available": FieldStockAvailable,
		},
		// Older warehouse exports carry "Quantity" instead of "Total
		// available"; when both appear the total wins.
		Fallback: map[string]string{
			"quantity": FieldStockAvailable,
		},
		Keys:     []string{FieldItemID},
		Required: []string{FieldItemID},
	}

	Customer = Source{
		Name: "customer",
		File: "AllCostumers.xlsx",
		Rename: map[string]string{
			"account":              FieldCustAccount,
			"name":                 FieldCustomerName,
			"customer_group":       FieldCustomerGroup,
			"employee_responsible": FieldSalesResponsible,
		},
		Keys:     []string{FieldCustAccount},
		Required: []string{FieldCustAccount},
	}

	PurchaseOrders = Source{
		Name: "purchase_orders",
		File: "OpenPurchaseOrderLines.xlsx",
		Rename: map[string]string{
			"item_number":            FieldItemID,
			"requested_receipt_date": FieldReceiptDate,
		},
		Keys: []string{FieldItemID},
		// The PO source degrades gracefully: a missing item column skips the
		// arrival join instead of aborting the run, so nothing is required.
		Required: nil,
	}
)

// OutputColumns is the artifact column order, the contract with downstream
// consumers of the reconciled dataset.
func OutputColumns() []string {
	return []string{
		FieldOrderDate,
		FieldSalesID,
		FieldItemID,
		FieldOpenQty,
		FieldSalesAmountBRL,
		FieldLogisticsStatus,
		FieldPickingRoute,
		FieldPickingStatus,
		FieldPickingQty,
		FieldPickingDate,
		FieldStockAvailable,
		FieldCoverageStatus,
		ColArrivalDisplay,
		ColInvoiceDate,
		FieldCustomerGroup,
		FieldCustomerName,
		FieldCustAccount,
		FieldSalesResponsible,
		FieldSalesAmount,
	}
}

// Sources lists all five extracts in load order.
func Sources() []Source {
	return []Source{Sales, Picking, Stock, Customer, PurchaseOrders}
}

// MissingColumnError reports that a source lacks columns the pipeline cannot
// proceed without (after renaming). Available carries the columns that were
// present so an upstream header rename can be diagnosed from the message
// alone.
type MissingColumnError struct {
	Source    string
	Missing   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf(
		"source %s: missing required columns %s (available: %s)",
		e.Source,
		strings.Join(e.Missing, ", "),
		strings.Join(e.Available, ", "),
	)
}

// Validate checks that every required column of s is present in t and
// returns a *MissingColumnError naming the gaps otherwise.
func Validate(t records.Table, s Source) error {
	var missing []string
	for _, col := range s.Required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingColumnError{
		Source:    s.Name,
		Missing:   missing,
		Available: append([]string(nil), t.Columns...),
	}
}

// slugTransformer strips diacritics so localized headers normalize to plain
// ASCII slugs ("Chegada Importação" -> "chegada_importacao").
var slugTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Slug converts a raw header into a canonical column name: diacritics
// removed, lowercased, runs of non-alphanumerics collapsed to single
// underscores.
func Slug(header string) string {
	s, _, err := transform.String(slugTransformer, strings.TrimSpace(header))
	if err != nil {
		s = strings.TrimSpace(header)
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// NormalizeKey canonicalizes a join-key value: text form, surrounding
// whitespace stripped, uppercased.
func NormalizeKey(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
