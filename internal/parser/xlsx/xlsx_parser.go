// Package xlsx implements a spreadsheet parser for source extracts. It reads
// the first worksheet of an .xlsx workbook: row one is the header, every
// following non-blank row becomes a record. Trailing cells a row does not
// carry are absent fields, matching the partial-record model.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"openlines/internal/parser"
	"openlines/pkg/records"
)

// Parser parses xlsx input according to parser.Options.
type Parser struct{ opt parser.Options }

// New constructs a Parser with the provided options.
func New(opt parser.Options) *Parser { return &Parser{opt: opt} }

// Parse reads the first sheet of the workbook from r. Blank rows are skipped
// and counted; a workbook without sheets or without a header row is a
// structural error.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("read %s workbook: %w", p.opt.Source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return records.Table{}, 0, fmt.Errorf("read %s workbook: no sheets", p.opt.Source)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return records.Table{}, 0, fmt.Errorf("read %s sheet %s: %w", p.opt.Source, sheets[0], err)
	}
	if len(rows) == 0 {
		return records.Table{}, 0, fmt.Errorf("read %s sheet %s: missing header row", p.opt.Source, sheets[0])
	}

	headers := parser.CanonicalHeaders(rows[0], p.opt.HeaderMap)
	t := records.Table{
		Source:  p.opt.Source,
		Columns: headers,
	}

	var skipped int
	for _, row := range rows[1:] {
		rec := make(records.Record, len(headers))
		for i, val := range row {
			if i >= len(headers) {
				break
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			rec[headers[i]] = val
		}
		if len(rec) == 0 {
			skipped++
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, skipped, nil
}
