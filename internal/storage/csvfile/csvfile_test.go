package csvfile

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"openlines/pkg/records"
)

/*
TestWrite covers the csv sink contract: header row in column order, shared
cell rendering (ISO dates, exact decimals, empty for absent), output dir
created on demand, and full replacement of a previous artifact.
*/
func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "open_lines.csv")
	table := records.Table{
		Columns: []string{"salesid", "order_date", "sales_amount", "picking_route"},
		Rows: []records.Record{
			{
				"salesid":      "SO-1",
				"order_date":   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
				"sales_amount": decimal.RequireFromString("250.5"),
			},
		},
	}

	if err := New(path).Write(context.Background(), table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := readAll(t, path)
	want := [][]string{
		{"salesid", "order_date", "sales_amount", "picking_route"},
		{"SO-1", "2025-01-10", "250.5", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("artifact = %v, want %v", got, want)
	}

	// A second write fully replaces the first.
	table.Rows = nil
	if err := New(path).Write(context.Background(), table); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := readAll(t, path); len(got) != 1 {
		t.Fatalf("rewritten artifact has %d lines, want header only", len(got))
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir has %d entries, want 1", len(entries))
	}
}

func TestWriteCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "open_lines.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(path).Write(ctx, records.Table{
		Columns: []string{"salesid"},
		Rows:    []records.Record{{"salesid": "SO-1"}},
	})
	if err == nil {
		t.Fatalf("Write: want context error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("partial artifact left on disk")
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
