// Package datasource abstracts where a source extract's bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a readable stream of one extract.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
