// Package xlsxfile implements the default sink: one worksheet, a header row
// of the output columns, one row per open line. The workbook is written to a
// temp file in the destination directory and renamed into place so a reader
// never sees a partial artifact.
package xlsxfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"openlines/internal/storage/cell"
	"openlines/pkg/records"
)

// Sink writes xlsx artifacts.
type Sink struct {
	path  string
	sheet string
}

// New returns a Sink writing to path with the given worksheet name.
func New(path, sheet string) *Sink {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &Sink{path: path, sheet: sheet}
}

// Write renders t into a workbook and atomically replaces the artifact.
func (s *Sink) Write(ctx context.Context, t records.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if s.sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
			return fmt.Errorf("xlsx: rename sheet: %w", err)
		}
	}

	for i, col := range t.Columns {
		ref, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("xlsx: header cell: %w", err)
		}
		if err := f.SetCellValue(s.sheet, ref, col); err != nil {
			return fmt.Errorf("xlsx: header cell: %w", err)
		}
	}

	for ri, row := range t.Rows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for ci, col := range t.Columns {
			v := row[col]
			if v == nil {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return fmt.Errorf("xlsx: cell: %w", err)
			}
			if err := f.SetCellValue(s.sheet, ref, cell.Text(v)); err != nil {
				return fmt.Errorf("xlsx: cell: %w", err)
			}
		}
	}

	return s.replace(f)
}

// replace saves the workbook to a temp file next to the destination and
// renames it over the artifact path.
func (s *Sink) replace(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".openlines-*.xlsx")
	if err != nil {
		return fmt.Errorf("xlsx: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("xlsx: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("xlsx: replace artifact: %w", err)
	}
	return nil
}
