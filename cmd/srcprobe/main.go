// Command srcprobe inspects one source extract against its contract: it
// prints each raw header, the canonical name it normalizes to, and whether
// the required columns are all present. Run it when an upstream export
// changes shape before the change breaks a reconciliation.
//
// Usage:
//
//	srcprobe -source sales -file data_raw/CHINTSalesDetail.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"openlines/internal/datasource/file"
	"openlines/internal/parser"
	"openlines/internal/parser/csv"
	"openlines/internal/parser/xlsx"
	"openlines/internal/schema"
	"openlines/internal/transformer/builtin"
)

var (
	flagSource = flag.String("source", "sales", "source contract to check: sales|picking|stock|customer|purchase_orders")
	flagFile   = flag.String("file", "", "extract file to probe (csv or xlsx by extension)")
)

func main() {
	flag.Parse()

	src, ok := sourceByName(*flagSource)
	if !ok {
		fatalf("unknown source %q", *flagSource)
	}
	path := *flagFile
	if path == "" {
		fatalf("-file is required")
	}

	r, err := file.NewLocal(path).Open(context.Background())
	if err != nil {
		fatalf("%v", err)
	}
	defer r.Close()

	var p parser.Parser
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		p = xlsx.New(parser.Options{Source: src.Name})
	} else {
		p = csv.New(parser.Options{Source: src.Name})
	}
	t, skipped, err := p.Parse(r)
	if err != nil {
		fatalf("parse: %v", err)
	}

	ren := builtin.Rename{Map: src.Rename, Fallback: src.Fallback}
	renamed, _ := ren.Apply(t)
	fmt.Printf("source=%s file=%s rows=%d skipped=%d\n\n", src.Name, path, t.Len(), skipped)
	for i, canonical := range ren.Targets(t.Columns) {
		col := t.Columns[i]
		switch {
		case canonical == "":
			fmt.Printf("  %-32s -> (dropped, duplicate target)\n", col)
		case canonical != col:
			fmt.Printf("  %-32s -> %s (renamed)\n", col, canonical)
		default:
			fmt.Printf("  %-32s -> %s\n", col, canonical)
		}
	}

	fmt.Println()
	if err := schema.Validate(renamed, src); err != nil {
		var missing *schema.MissingColumnError
		if errors.As(err, &missing) {
			fmt.Printf("contract NOT satisfied: missing %s\n", strings.Join(missing.Missing, ", "))
			os.Exit(1)
		}
		fatalf("%v", err)
	}
	fmt.Println("contract satisfied")
}

func sourceByName(name string) (schema.Source, bool) {
	for _, s := range schema.Sources() {
		if s.Name == name {
			return s, true
		}
	}
	return schema.Source{}, false
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
