// Package config defines the canonical, JSON-serializable configuration model
// for one reconciliation run. It is intentionally small and explicit so a run
// can be described entirely by a file under configs/ and passed through the
// program without additional glue code.
//
// A Pipeline value is immutable once loaded: it is built, validated, and then
// handed to the run entry point as a value, never mutated.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Pipeline is the top-level object decoded from a run config file.
type Pipeline struct {
	// Job names the run for logs and metrics labels.
	Job string `json:"job"`

	// RawDir is the directory holding the five source extracts.
	RawDir string `json:"raw_dir"`

	// Sources optionally overrides the default filename of each extract
	// (relative to RawDir unless absolute).
	Sources SourceFiles `json:"sources"`

	// Statuses configures the business-status sets.
	Statuses Statuses `json:"statuses"`

	// Rules configures the invoice-date projection.
	Rules Rules `json:"rules"`

	// Output selects and configures the sink.
	Output Output `json:"output"`
}

// SourceFiles carries per-extract filename overrides. Empty fields fall back
// to the schema package defaults.
type SourceFiles struct {
	Sales          string `json:"sales"`
	Picking        string `json:"picking"`
	Stock          string `json:"stock"`
	Customer       string `json:"customer"`
	PurchaseOrders string `json:"purchase_orders"`
}

// Statuses holds the status sets driving the filter stages.
type Statuses struct {
	// ActiveSales lists the sales-line statuses considered open.
	ActiveSales []string `json:"active_sales"`

	// TrackedPicking lists the picking handling statuses that participate in
	// the picking join.
	TrackedPicking []string `json:"tracked_picking"`
}

// Rules holds the invoice-projection knobs.
type Rules struct {
	// InvoiceLeadDays is added to the earliest PO arrival date to project the
	// invoice date.
	InvoiceLeadDays int `json:"invoice_lead_days"`

	// FallbackMonths is the month offset of the placeholder invoice date used
	// when no PO arrival exists (first day of run month + FallbackMonths).
	FallbackMonths int `json:"fallback_months"`

	// NoCoverageMarker is the literal written to the arrival display column
	// when no PO arrival exists. Downstream consumers match it verbatim.
	NoCoverageMarker string `json:"no_coverage_marker"`

	// DateLayouts lists the layouts tried, in order, when parsing source date
	// cells.
	DateLayouts []string `json:"date_layouts"`
}

// Output configures the sink that persists the reconciled table.
type Output struct {
	// Kind selects the sink implementation: "xlsx", "csv" or "sqlite".
	Kind string `json:"kind"`

	// Path is the artifact path for file sinks, or the database path/DSN for
	// the sqlite sink.
	Path string `json:"path"`

	// Table is the destination table name for the sqlite sink.
	Table string `json:"table"`

	// Sheet names the worksheet for the xlsx sink.
	Sheet string `json:"sheet"`
}

// Default returns the configuration matching the upstream extract layout:
// sources under data_raw/, xlsx artifact under data_transformed/, OPEN ORDER
// lines joined against ACTIVATED/COMPLETED picking tasks.
func Default() Pipeline {
	return Pipeline{
		Job:    "open_sales_lines",
		RawDir: "data_raw",
		Statuses: Statuses{
			ActiveSales:    []string{"OPEN ORDER"},
			TrackedPicking: []string{"ACTIVATED", "COMPLETED"},
		},
		Rules: Rules{
			InvoiceLeadDays:  4,
			FallbackMonths:   4,
			NoCoverageMarker: "Sem Cobertura",
			DateLayouts: []string{
				"2006-01-02",
				"2006-01-02 15:04:05",
				"02/01/2006",
				"02/01/2006 15:04:05",
				"1/2/06 15:04",
				"01-02-06",
			},
		},
		Output: Output{
			Kind:  "xlsx",
			Path:  filepath.Join("data_transformed", "data_costumer_care.xlsx"),
			Table: "open_lines",
			Sheet: "Sheet1",
		},
	}
}

// Load decodes a Pipeline from a JSON file and fills unset fields from
// Default. The returned value is not validated; see ValidatePipeline.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	p := Default()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return withDefaults(p), nil
}

// withDefaults fills zero-valued fields that decoding may have cleared (JSON
// null / explicit empty arrays are preserved as configured).
func withDefaults(p Pipeline) Pipeline {
	def := Default()
	if p.Job == "" {
		p.Job = def.Job
	}
	if p.RawDir == "" {
		p.RawDir = def.RawDir
	}
	if p.Rules.NoCoverageMarker == "" {
		p.Rules.NoCoverageMarker = def.Rules.NoCoverageMarker
	}
	if len(p.Rules.DateLayouts) == 0 {
		p.Rules.DateLayouts = def.Rules.DateLayouts
	}
	if p.Output.Kind == "" {
		p.Output.Kind = def.Output.Kind
	}
	if p.Output.Path == "" {
		p.Output.Path = def.Output.Path
	}
	if p.Output.Table == "" {
		p.Output.Table = def.Output.Table
	}
	if p.Output.Sheet == "" {
		p.Output.Sheet = def.Output.Sheet
	}
	return p
}

// SourcePath resolves a configured filename override (or the default name)
// against RawDir. Absolute overrides are used as-is.
func (p Pipeline) SourcePath(override, defaultName string) string {
	name := override
	if name == "" {
		name = defaultName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.RawDir, name)
}
