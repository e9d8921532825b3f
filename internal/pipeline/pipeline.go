// Package pipeline orchestrates one reconciliation run: load the five
// extracts, normalize them onto the canonical vocabulary, filter the open
// sales lines, chain the left joins, resolve the presentation columns and
// persist the artifact through the configured sink.
//
// The transform itself is a single deterministic pass over immutable tables;
// only the initial source loading is concurrent, since it is pure I/O.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"openlines/internal/config"
	"openlines/internal/datasource"
	"openlines/internal/datasource/file"
	"openlines/internal/join"
	"openlines/internal/metrics"
	"openlines/internal/money"
	"openlines/internal/parser"
	"openlines/internal/parser/csv"
	"openlines/internal/parser/xlsx"
	"openlines/internal/schema"
	"openlines/internal/storage"
	"openlines/internal/storage/cell"
	"openlines/internal/transformer"
	"openlines/internal/transformer/builtin"
	"openlines/pkg/records"
)

// Result summarizes one run for logs and callers.
type Result struct {
	// SourceRows counts rows read per source, SkippedRows the malformed rows
	// each parser soft-skipped.
	SourceRows  map[string]int
	SkippedRows map[string]int

	// ActiveRows counts sales lines surviving the active filter, OutputRows
	// the rows written to the artifact.
	ActiveRows int
	OutputRows int

	// EmptyActiveSet is true when no sales line was active. The run succeeds
	// but writes no artifact.
	EmptyActiveSet bool

	// ArtifactPath is the written artifact ("" when EmptyActiveSet).
	ArtifactPath string

	// Fingerprint hashes the rendered output rows; identical inputs under the
	// same run date produce the same fingerprint.
	Fingerprint uint64
}

// Run executes the pipeline with the wall clock.
func Run(ctx context.Context, cfg config.Pipeline) (Result, error) {
	return RunAt(ctx, cfg, time.Now)
}

// RunAt executes the pipeline with an injected run clock. The clock only
// influences the fallback invoice date.
func RunAt(ctx context.Context, cfg config.Pipeline, now func() time.Time) (Result, error) {
	res := Result{
		SourceRows:  make(map[string]int),
		SkippedRows: make(map[string]int),
	}

	raw, err := loadSources(ctx, cfg, &res)
	if err != nil {
		return res, err
	}

	tables, err := normalize(cfg, raw)
	if err != nil {
		return res, err
	}

	active, err := step(cfg.Job, "filter", func() (records.Table, error) {
		return transformer.Chain{
			builtin.FilterIn{Field: schema.FieldSalesStatus, Allowed: cfg.Statuses.ActiveSales},
		}.Apply(tables[schema.Sales.Name])
	})
	if err != nil {
		return res, err
	}
	res.ActiveRows = active.Len()
	metrics.RecordRows(cfg.Job, "active", int64(active.Len()))

	if active.Len() == 0 {
		res.EmptyActiveSet = true
		log.Printf("job=%s no active sales lines; nothing to report", cfg.Job)
		return res, nil
	}

	out, err := step(cfg.Job, "join", func() (records.Table, error) {
		return assemble(cfg, active, tables)
	})
	if err != nil {
		return res, err
	}

	out, err = step(cfg.Job, "resolve", func() (records.Table, error) {
		resolved, err := (Resolver{
			LeadDays:       cfg.Rules.InvoiceLeadDays,
			FallbackMonths: cfg.Rules.FallbackMonths,
			Marker:         cfg.Rules.NoCoverageMarker,
			Now:            now,
		}).Apply(out)
		if err != nil {
			return records.Table{}, err
		}
		return finalize(resolved)
	})
	if err != nil {
		return res, err
	}
	res.OutputRows = out.Len()
	res.Fingerprint = fingerprint(out)
	metrics.RecordRows(cfg.Job, "output", int64(out.Len()))

	if err := writeArtifact(ctx, cfg, out); err != nil {
		return res, err
	}
	res.ArtifactPath = cfg.Output.Path

	log.Printf("job=%s rows=%d artifact=%s fingerprint=%016x",
		cfg.Job, res.OutputRows, res.ArtifactPath, res.Fingerprint)
	return res, nil
}

// loadSources reads and parses the five extracts concurrently. Parsing never
// shares state across sources, so each goroutine owns its table slot.
func loadSources(ctx context.Context, cfg config.Pipeline, res *Result) (map[string]records.Table, error) {
	started := time.Now()
	sources := schema.Sources()
	overrides := map[string]string{
		schema.Sales.Name:          cfg.Sources.Sales,
		schema.Picking.Name:        cfg.Sources.Picking,
		schema.Stock.Name:          cfg.Sources.Stock,
		schema.Customer.Name:       cfg.Sources.Customer,
		schema.PurchaseOrders.Name: cfg.Sources.PurchaseOrders,
	}

	type loaded struct {
		table   records.Table
		skipped int
	}
	results := make([]loaded, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			path := cfg.SourcePath(overrides[src.Name], src.File)
			t, skipped, err := loadOne(gctx, src, path, file.NewLocal(path))
			if err != nil {
				return err
			}
			results[i] = loaded{table: t, skipped: skipped}
			return nil
		})
	}
	err := g.Wait()
	metrics.RecordStep(cfg.Job, "load", err, time.Since(started))
	if err != nil {
		return nil, err
	}

	tables := make(map[string]records.Table, len(sources))
	for i, src := range sources {
		tables[src.Name] = results[i].table
		res.SourceRows[src.Name] = results[i].table.Len()
		res.SkippedRows[src.Name] = results[i].skipped
		metrics.RecordRows(cfg.Job, src.Name, int64(results[i].table.Len()))
		if results[i].skipped > 0 {
			log.Printf("job=%s source=%s skipped %d malformed rows",
				cfg.Job, src.Name, results[i].skipped)
		}
	}
	return tables, nil
}

// loadOne opens and parses a single extract, mapping a missing file onto
// *SourceNotFoundError.
func loadOne(ctx context.Context, src schema.Source, path string, ds datasource.Source) (records.Table, int, error) {
	r, err := ds.Open(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return records.Table{}, 0, &SourceNotFoundError{Source: src.Name, Path: path, Err: err}
		}
		return records.Table{}, 0, fmt.Errorf("source %s: %w", src.Name, err)
	}
	defer r.Close()

	t, skipped, err := parserFor(src.Name, path).Parse(r)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("source %s: %w", src.Name, err)
	}
	return t, skipped, nil
}

// parserFor selects the parser by file extension; anything that is not xlsx
// is treated as delimited text.
func parserFor(source, path string) parser.Parser {
	opt := parser.Options{Source: source}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.New(opt)
	}
	return csv.New(opt)
}

// normalize runs each source through its canonical chain: rename, key and
// status cleanup, structural contract, value coercion.
func normalize(cfg config.Pipeline, raw map[string]records.Table) (map[string]records.Table, error) {
	started := time.Now()
	// Status fields normalize alongside the join keys so the artifact always
	// shows them in canonical uppercase, whatever case the export used.
	clean := map[string][]string{
		schema.Sales.Name:   {schema.FieldSalesStatus},
		schema.Picking.Name: {schema.FieldPickingStatus},
	}
	coerce := map[string]builtin.Coerce{
		schema.Sales.Name: {
			Dates:   []string{schema.FieldOrderDate},
			Amounts: []string{schema.FieldSalesAmount},
			Numbers: []string{schema.FieldOpenQty},
		},
		schema.Picking.Name: {
			Dates:   []string{schema.FieldPickingDate},
			Numbers: []string{schema.FieldPickingQty},
		},
		schema.Stock.Name: {
			Numbers: []string{schema.FieldStockAvailable},
		},
		schema.Customer.Name: {},
		schema.PurchaseOrders.Name: {
			Dates: []string{schema.FieldReceiptDate},
		},
	}

	tables := make(map[string]records.Table, len(raw))
	var err error
	for _, src := range schema.Sources() {
		c := coerce[src.Name]
		c.Layouts = cfg.Rules.DateLayouts
		chain := transformer.Chain{
			builtin.Rename{Map: src.Rename, Fallback: src.Fallback},
			builtin.CleanKeys{Fields: append(append([]string(nil), src.Keys...), clean[src.Name]...)},
			builtin.RequireColumns{Source: src},
			c,
		}
		tables[src.Name], err = chain.Apply(raw[src.Name])
		if err != nil {
			break
		}
	}
	metrics.RecordStep(cfg.Job, "normalize", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// assemble chains the four left joins onto the active sales lines.
func assemble(cfg config.Pipeline, active records.Table, tables map[string]records.Table) (records.Table, error) {
	picking, err := transformer.Chain{
		builtin.FilterIn{Field: schema.FieldPickingStatus, Allowed: cfg.Statuses.TrackedPicking},
		builtin.Project{Columns: []string{
			schema.FieldSalesID, schema.FieldItemID,
			schema.FieldPickingRoute, schema.FieldPickingStatus,
			schema.FieldPickingQty, schema.FieldPickingDate,
		}},
	}.Apply(tables[schema.Picking.Name])
	if err != nil {
		return records.Table{}, err
	}

	// Picking fans out: one sales line with several tracked picking tasks
	// yields one output row per task.
	out := join.Left(active, picking,
		[]string{schema.FieldSalesID, schema.FieldItemID},
		[]string{
			schema.FieldPickingRoute, schema.FieldPickingStatus,
			schema.FieldPickingQty, schema.FieldPickingDate,
		})

	out = join.LeftOne(out, tables[schema.Stock.Name],
		[]string{schema.FieldItemID},
		[]string{schema.FieldStockAvailable, schema.FieldCoverageStatus})
	fillStockDefaults(out)

	out = join.LeftOne(out, tables[schema.Customer.Name],
		[]string{schema.FieldCustAccount},
		[]string{
			schema.FieldCustomerName, schema.FieldCustomerGroup,
			schema.FieldSalesResponsible,
		})

	arrivals, ok := poArrivals(tables[schema.PurchaseOrders.Name])
	if !ok {
		log.Printf("job=%s purchase order extract lacks an item column; skipping arrival join", cfg.Job)
	}
	out = join.LeftOne(out, arrivals,
		[]string{schema.FieldItemID},
		[]string{schema.FieldArrivalDate})
	return out, nil
}

// fillStockDefaults applies the no-coverage defaults in place: items absent
// from the stock extract read as zero available with status "NO COVERAGE",
// and present coverage values are canonicalized.
func fillStockDefaults(t records.Table) {
	for _, r := range t.Rows {
		if !r.Has(schema.FieldStockAvailable) {
			r[schema.FieldStockAvailable] = float64(0)
		}
		status := schema.NormalizeKey(r.Text(schema.FieldCoverageStatus))
		if status == "" {
			status = "NO COVERAGE"
		}
		r[schema.FieldCoverageStatus] = status
	}
}

// poArrivals reduces the purchase-order lines to one earliest receipt date
// per item, renamed to the arrival field. ok is false when the extract has no
// item column; the caller then joins against an empty table.
func poArrivals(po records.Table) (records.Table, bool) {
	if !po.HasColumn(schema.FieldItemID) {
		return records.Table{Source: po.Source}, false
	}
	dated, _ := builtin.DropEmpty{Field: schema.FieldReceiptDate}.Apply(po)
	grouped := join.MinDate(dated, schema.FieldItemID, schema.FieldReceiptDate)
	renamed, _ := builtin.Rename{Map: map[string]string{
		schema.FieldReceiptDate: schema.FieldArrivalDate,
	}}.Apply(grouped)
	return renamed, true
}

// finalize derives the display amount and projects the artifact column order.
func finalize(t records.Table) (records.Table, error) {
	for _, r := range t.Rows {
		if amount, ok := r.Amount(schema.FieldSalesAmount); ok {
			r[schema.FieldSalesAmountBRL] = money.BRL(amount)
		}
	}
	t = t.WithColumns(schema.FieldSalesAmountBRL)
	return builtin.Project{Columns: schema.OutputColumns()}.Apply(t)
}

// fingerprint hashes the rendered cells in artifact order, so two runs that
// would write the same bytes report the same value.
func fingerprint(t records.Table) uint64 {
	h := xxh3.New()
	for _, c := range t.Columns {
		h.WriteString(c)
		h.WriteString("\x1f")
	}
	h.WriteString("\n")
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			h.WriteString(cell.Text(r[c]))
			h.WriteString("\x1f")
		}
		h.WriteString("\n")
	}
	return h.Sum64()
}

func writeArtifact(ctx context.Context, cfg config.Pipeline, t records.Table) error {
	started := time.Now()
	sink, err := storage.New(storage.Config{
		Kind:  cfg.Output.Kind,
		Path:  cfg.Output.Path,
		Table: cfg.Output.Table,
		Sheet: cfg.Output.Sheet,
	})
	if err == nil {
		err = sink.Write(ctx, t)
	}
	metrics.RecordStep(cfg.Job, "sink", err, time.Since(started))
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// step runs fn and records its outcome and latency under the given name.
func step(job, name string, fn func() (records.Table, error)) (records.Table, error) {
	started := time.Now()
	t, err := fn()
	metrics.RecordStep(job, name, err, time.Since(started))
	return t, err
}
