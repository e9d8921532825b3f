// Package csv implements a streaming CSV parser for source extracts. Rows
// that cannot be parsed or whose width does not match the header are
// soft-skipped and counted rather than failing the whole read.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"openlines/internal/parser"
	"openlines/pkg/records"
)

// skipLogLimit caps per-row skip diagnostics so a badly exported file cannot
// flood the log.
const skipLogLimit = 20

// Parser parses CSV input according to parser.Options. It is safe to reuse
// across inputs but is not concurrency-safe.
type Parser struct{ opt parser.Options }

// New constructs a Parser with the provided options.
func New(opt parser.Options) *Parser { return &Parser{opt: opt} }

// Parse consumes CSV records from r and returns the parsed table along with
// the number of rows skipped due to parse errors or field-count mismatches.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // width enforced against the header below

	head, err := cr.Read()
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("read %s header: %w", p.opt.Source, err)
	}
	headers := parser.CanonicalHeaders(head, p.opt.HeaderMap)

	t := records.Table{
		Source:  p.opt.Source,
		Columns: headers,
	}

	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("%s: skipping row %d: %v", p.opt.Source, line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("%s: skipping row %d: expected %d fields, got %d",
					p.opt.Source, line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			rec[headers[i]] = val
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, skipped, nil
}
