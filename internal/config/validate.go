// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "output.kind"); Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownOutputKinds are the sink implementations the factory can build.
var knownOutputKinds = map[string]struct{}{
	"xlsx":   {},
	"csv":    {},
	"sqlite": {},
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; it returns a slice of Issue values and callers decide
// whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics for the run",
		})
	}
	if strings.TrimSpace(p.RawDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "raw_dir",
			Message:  "raw_dir must name the directory holding the source extracts",
		})
	}

	issues = append(issues, validateStatuses(p.Statuses)...)
	issues = append(issues, validateRules(p.Rules)...)
	issues = append(issues, validateOutput(p.Output)...)

	return issues
}

func validateStatuses(s Statuses) []Issue {
	var issues []Issue

	// An empty active set filters out every line; the run would terminate
	// with no artifact on every invocation. Legal, but almost certainly a
	// config mistake.
	if len(s.ActiveSales) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "statuses.active_sales",
			Message:  "active_sales is empty; every run will end with an empty active set and no artifact",
		})
	}
	if len(s.TrackedPicking) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "statuses.tracked_picking",
			Message:  "tracked_picking is empty; no line will carry picking information",
		})
	}
	for i, v := range s.ActiveSales {
		if strings.TrimSpace(v) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("statuses.active_sales[%d]", i),
				Message:  "status values must not be blank",
			})
		}
	}
	return issues
}

func validateRules(r Rules) []Issue {
	var issues []Issue

	if r.InvoiceLeadDays < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rules.invoice_lead_days",
			Message:  "invoice_lead_days must not be negative",
		})
	}
	if r.FallbackMonths <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rules.fallback_months",
			Message:  "fallback_months must be positive; the placeholder date must lie in the future",
		})
	}
	if strings.TrimSpace(r.NoCoverageMarker) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "rules.no_coverage_marker",
			Message:  "no_coverage_marker is blank; downstream consumers match this literal",
		})
	}
	if len(r.DateLayouts) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "rules.date_layouts",
			Message:  "at least one date layout is required to parse source dates",
		})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.kind",
			Message:  "output.kind must not be empty",
		})
		return issues
	}
	if _, ok := knownOutputKinds[o.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.kind",
			Message:  fmt.Sprintf("unknown output kind %q (expected xlsx, csv or sqlite)", o.Kind),
		})
	}
	if strings.TrimSpace(o.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must name the artifact destination",
		})
	}
	if o.Kind == "sqlite" && strings.TrimSpace(o.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.table",
			Message:  "sqlite output requires a table name",
		})
	}
	return issues
}
