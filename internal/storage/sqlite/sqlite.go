// Package sqlite implements a SQLite sink using database/sql. The dataset
// lifecycle is full replacement per run: the destination table is dropped,
// recreated and repopulated inside a single transaction, so concurrent
// readers observe either the previous run or the new one, never a mix.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"openlines/internal/storage/cell"
	"openlines/pkg/records"
)

// Sink writes the reconciled table into a SQLite database.
type Sink struct {
	dsn   string
	table string
}

// New returns a Sink writing to the database at dsn into the named table.
func New(dsn, table string) *Sink { return &Sink{dsn: dsn, table: table} }

// Write replaces the destination table with the rows of t.
func (s *Sink) Write(ctx context.Context, t records.Table) error {
	if strings.TrimSpace(s.table) == "" {
		return fmt.Errorf("sqlite: table name must not be empty")
	}

	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", s.dsn, err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(s.table))); err != nil {
		return fmt.Errorf("sqlite: drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createSQL(s.table, t.Columns)); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table, t.Columns))
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			if row[col] == nil {
				args[i] = nil
				continue
			}
			args[i] = cell.Text(row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// quoteIdent double-quotes an identifier; output columns contain spaces and
// non-ASCII characters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
}

func insertSQL(table string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(cols, ", "),
		strings.Join(marks, ", "),
	)
}
