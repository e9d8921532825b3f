// Command openlines-web serves the customer dashboard over a reconciliation
// artifact.
//
// Usage:
//
//	go run ./cmd/openlines-web -addr :8080 -data data_transformed/data_costumer_care.xlsx
package main

import (
	"flag"
	"log"
	"path/filepath"

	"openlines/internal/webui"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	data := flag.String("data", filepath.Join("data_transformed", "data_costumer_care.xlsx"),
		"path of the reconciled artifact to serve")
	flag.Parse()

	ds, err := webui.LoadDataset(*data)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d open lines from %s", ds.Len(), *data)

	srv := webui.NewServer(webui.Config{Addr: *addr}, ds)
	log.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
