package builtin

import (
	"openlines/internal/schema"
	"openlines/pkg/records"
)

// RequireColumns enforces a source's structural contract: every required
// column must exist after renaming. The table passes through unchanged on
// success; on failure the chain aborts with a *schema.MissingColumnError
// naming the source, the gaps, and the columns that were available.
type RequireColumns struct {
	Source schema.Source
}

func (s RequireColumns) Apply(t records.Table) (records.Table, error) {
	if err := schema.Validate(t, s.Source); err != nil {
		return records.Table{}, err
	}
	return t, nil
}
