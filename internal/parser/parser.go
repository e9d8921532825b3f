// Package parser turns raw extract bytes into Tables. Each implementation
// reads one header row, canonicalizes the header names (source rename map
// first, slug normalization otherwise) and emits partial records keyed by the
// canonical names. Empty cells become absent fields, never empty strings.
package parser

import (
	"io"
	"strings"

	"openlines/internal/schema"
	"openlines/pkg/records"
)

// Parser parses one tabular extract. The int return counts rows that were
// soft-skipped (malformed lines, width mismatches); skipping a row is never
// an error.
type Parser interface {
	Parse(r io.Reader) (records.Table, int, error)
}

// Options is shared parser configuration.
type Options struct {
	// Source names the extract for diagnostics and becomes Table.Source.
	Source string

	// HeaderMap maps raw source headers to canonical field names. Headers
	// without an entry fall back to slug normalization.
	HeaderMap map[string]string

	// Comma is the CSV delimiter; ',' when zero. Ignored by the xlsx parser.
	Comma rune
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// CanonicalHeaders produces canonical column keys from a raw header row: the
// rename map wins when it has an entry for the raw header, slug normalization
// applies otherwise. A UTF-8 BOM on the first cell is stripped.
func CanonicalHeaders(h []string, rename map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if mapped, ok := rename[c]; ok && mapped != "" {
			res[i] = mapped
			continue
		}
		res[i] = schema.Slug(c)
	}
	return res
}
