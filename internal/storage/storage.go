// Package storage abstracts the sink that persists the reconciled table.
// Every implementation replaces the previous artifact atomically from the
// consumer's point of view: file sinks write a temp file and rename it into
// place, the sqlite sink swaps the table inside one transaction. A reader
// never observes a half-written artifact.
package storage

import (
	"context"
	"fmt"

	"openlines/internal/storage/csvfile"
	"openlines/internal/storage/sqlite"
	"openlines/internal/storage/xlsxfile"
	"openlines/pkg/records"
)

// Sink persists one reconciled table, fully replacing any previous artifact.
type Sink interface {
	Write(ctx context.Context, t records.Table) error
}

// Config selects and configures a sink implementation.
type Config struct {
	// Kind is "xlsx", "csv" or "sqlite".
	Kind string

	// Path is the artifact path (file sinks) or database path/DSN (sqlite).
	Path string

	// Table is the destination table name for the sqlite sink.
	Table string

	// Sheet is the worksheet name for the xlsx sink.
	Sheet string
}

// New builds the sink for cfg.Kind.
func New(cfg Config) (Sink, error) {
	switch cfg.Kind {
	case "xlsx":
		return xlsxfile.New(cfg.Path, cfg.Sheet), nil
	case "csv":
		return csvfile.New(cfg.Path), nil
	case "sqlite":
		return sqlite.New(cfg.Path, cfg.Table), nil
	default:
		return nil, fmt.Errorf("unsupported output.kind=%s", cfg.Kind)
	}
}
