// Package transformer defines the stage model of the pipeline: each stage
// takes a table and returns a new one, never mutating its input, so stages
// can be unit-tested in isolation and reordered safely. Structural failures
// (a source that cannot be processed at all) surface as errors and stop the
// chain; value-level problems are each stage's own business and never abort.
package transformer

import "openlines/pkg/records"

// Stage transforms one table into another.
type Stage interface {
	Apply(records.Table) (records.Table, error)
}

// Chain is an ordered list of stages applied left to right. The first error
// stops the chain.
type Chain []Stage

func (c Chain) Apply(t records.Table) (records.Table, error) {
	out := t
	var err error
	for _, s := range c {
		out, err = s.Apply(out)
		if err != nil {
			return records.Table{}, err
		}
	}
	return out, nil
}
