// Package csvfile implements a CSV sink with the same artifact contract as
// the xlsx sink: header row of output columns, one row per open line, atomic
// replace via temp-file-and-rename.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"openlines/internal/storage/cell"
	"openlines/pkg/records"
)

// Sink writes csv artifacts.
type Sink struct{ path string }

// New returns a Sink writing to path.
func New(path string) *Sink { return &Sink{path: path} }

// Write renders t and atomically replaces the artifact.
func (s *Sink) Write(ctx context.Context, t records.Table) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".openlines-*.csv")
	if err != nil {
		return fmt.Errorf("csv: temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		return fail(fmt.Errorf("csv: write header: %w", err))
	}

	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		default:
		}
		for i, col := range t.Columns {
			line[i] = cell.Text(row[col])
		}
		if err := w.Write(line); err != nil {
			return fail(fmt.Errorf("csv: write row: %w", err))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fail(fmt.Errorf("csv: flush: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("csv: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("csv: replace artifact: %w", err)
	}
	return nil
}
