package pipeline

import "fmt"

// SourceNotFoundError reports a missing source extract. It names the logical
// source and the resolved path so an operator can tell a misplaced file from
// a misconfigured raw_dir.
type SourceNotFoundError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %s: extract not found at %s", e.Source, e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }
