package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"openlines/pkg/records"
)

/*
TestWrite covers the sqlite sink's full-replacement lifecycle:

  - The table is created with quoted column names (output columns contain
    spaces and non-ASCII characters).
  - Cells store the shared rendered text; absent fields store NULL.
  - A second run's rows fully replace the first run's.
*/
func TestWrite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "open_lines.db")
	table := records.Table{
		Columns: []string{"salesid", "order_date", "Chegada Importação"},
		Rows: []records.Record{
			{
				"salesid":            "SO-1",
				"order_date":         time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
				"Chegada Importação": "01/02/2025",
			},
			{"salesid": "SO-2"},
		},
	}

	if err := New(dsn, "open_lines").Write(context.Background(), table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "open_lines"`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}

	var orderDate, arrival sql.NullString
	err = db.QueryRow(
		`SELECT "order_date", "Chegada Importação" FROM "open_lines" WHERE "salesid" = ?`, "SO-1",
	).Scan(&orderDate, &arrival)
	if err != nil {
		t.Fatalf("select SO-1: %v", err)
	}
	if orderDate.String != "2025-01-10" || arrival.String != "01/02/2025" {
		t.Fatalf("SO-1 = %q, %q", orderDate.String, arrival.String)
	}

	err = db.QueryRow(
		`SELECT "order_date" FROM "open_lines" WHERE "salesid" = ?`, "SO-2",
	).Scan(&orderDate)
	if err != nil {
		t.Fatalf("select SO-2: %v", err)
	}
	if orderDate.Valid {
		t.Fatalf("absent field stored %q, want NULL", orderDate.String)
	}

	// Replacement run.
	table.Rows = table.Rows[:1]
	if err := New(dsn, "open_lines").Write(context.Background(), table); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM "open_lines"`).Scan(&n); err != nil {
		t.Fatalf("count after rewrite: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows after rewrite = %d, want 1", n)
	}
}

func TestWriteRequiresTableName(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "open_lines.db")
	if err := New(dsn, " ").Write(context.Background(), records.Table{}); err == nil {
		t.Fatalf("Write: want error for blank table name")
	}
}
