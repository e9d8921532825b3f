// Command openlines runs one reconciliation: it joins the five warehouse
// extracts into the open-sales-lines artifact.
//
// Usage:
//
//	openlines -config configs/openlines.json
//	openlines -config configs/openlines.json -validate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"openlines/internal/config"
	"openlines/internal/metrics"
	"openlines/internal/metrics/prompush"
	"openlines/internal/pipeline"
	"openlines/internal/schema"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (defaults built in when empty)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}

	issues := config.ValidatePipeline(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(cfg.Job, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		var notFound *pipeline.SourceNotFoundError
		var missing *schema.MissingColumnError
		switch {
		case errors.As(err, &notFound):
			log.Fatalf("%v (check raw_dir=%s and the sources overrides)", notFound, cfg.RawDir)
		case errors.As(err, &missing):
			log.Fatalf("%v", missing)
		default:
			log.Fatalf("%v", err)
		}
	}

	for _, src := range schema.Sources() {
		if *verbose || res.SkippedRows[src.Name] > 0 {
			log.Printf("source %s: %d rows (%d skipped)",
				src.Name, res.SourceRows[src.Name], res.SkippedRows[src.Name])
		} else {
			log.Printf("source %s: %d rows", src.Name, res.SourceRows[src.Name])
		}
	}
	if res.EmptyActiveSet {
		log.Printf("completed in %s: no active sales lines, no artifact written",
			time.Since(start).Truncate(time.Millisecond))
		return
	}
	log.Printf("completed in %s: %d active lines, %d rows written to %s",
		time.Since(start).Truncate(time.Millisecond),
		res.ActiveRows, res.OutputRows, res.ArtifactPath)
}

// setupMetrics installs the backend chosen by flag → env → default.
func setupMetrics(job, backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v backend=%v job=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
