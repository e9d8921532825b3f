package xlsxfile

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"openlines/pkg/records"
)

/*
TestWrite covers the xlsx sink: named sheet, header row in column order,
shared cell rendering, and replacement of an existing artifact.
*/
func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "open_lines.xlsx")
	table := records.Table{
		Columns: []string{"salesid", "order_date", "coverage_status"},
		Rows: []records.Record{
			{
				"salesid":    "SO-1",
				"order_date": time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			},
			{
				"salesid":         "SO-2",
				"coverage_status": "NO COVERAGE",
			},
		},
	}

	if err := New(path, "Sheet1").Write(context.Background(), table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "Sheet1" {
		t.Fatalf("sheets = %v", got)
	}
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"salesid", "order_date", "coverage_status"},
		{"SO-1", "2025-01-10"},
		{"SO-2", "", "NO COVERAGE"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("artifact rows = %v, want %v", rows, want)
	}

	// Replacement keeps a single consistent artifact.
	table.Rows = table.Rows[:1]
	if err := New(path, "Sheet1").Write(context.Background(), table); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()
	rows, err = f2.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rewritten artifact has %d rows, want 2", len(rows))
	}
}
