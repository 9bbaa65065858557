// Package datasource abstracts where ingestion input bytes come from. The
// pipeline consumes a Source and stays agnostic of whether the delimited file
// sits on local disk or behind an HTTP endpoint.
package datasource

import (
	"context"
	"io"
)

// Source is a byte-level readable resource identified at construction time.
// A failed Open is a fatal, immediately-surfaced error for the run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
