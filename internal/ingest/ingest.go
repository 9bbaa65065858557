// Package ingest runs the chunked CSV ingestion pipeline: header gate,
// streaming decode, per-chunk validate-and-convert, insert-if-absent
// persistence, and metrics accumulation.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hristo-banchev/terraloc-ingest/internal/datasource"
	csvparser "github.com/hristo-banchev/terraloc-ingest/internal/parser/csv"
	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
	"github.com/hristo-banchev/terraloc-ingest/pkg/records"

	imetrics "github.com/hristo-banchev/terraloc-ingest/internal/metrics"
)

// ErrInvalidHeaders is the sentinel wrapped by every header-gate failure.
var ErrInvalidHeaders = errors.New("invalid headers")

// HeaderError reports header names that the contract does not declare. It
// carries ErrInvalidHeaders for errors.Is matching.
type HeaderError struct {
	Unknown []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid headers: %s", strings.Join(e.Unknown, ", "))
}

func (e *HeaderError) Is(target error) bool { return target == ErrInvalidHeaders }

// defaultReadAhead bounds the decode channel when Options.ReadAhead is zero.
const defaultReadAhead = 256

// heartbeatEvery is the processed-record interval for progress log lines.
const heartbeatEvery = 50000

// Options tunes one ingestion run.
type Options struct {
	// Dataset labels log lines and metrics. Empty falls back to the
	// contract name.
	Dataset string

	// ChunkSize is the number of records per chunk; must be positive.
	ChunkSize int

	// ReadAhead bounds the channel between the decoder goroutine and the
	// chunk loop. Zero means defaultReadAhead.
	ReadAhead int

	// Comma and LazyQuotes configure the CSV decoder.
	Comma      rune
	LazyQuotes bool

	// Verbose enables per-chunk progress logging.
	Verbose bool
}

// Run executes one full ingestion: it opens src, validates the header row
// against contract, then streams data rows through chunked
// validate-convert-persist until EOF.
//
// Invalid rows and silently-skipped duplicates never abort the run; they are
// counted. A decode syntax error, a persistence error, or ctx cancellation
// aborts the run mid-stream with a nil Metrics.
func Run(ctx context.Context, src datasource.Source, repo storage.Repository, contract *schema.Contract, opts Options) (*Metrics, error) {
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if err := contract.Validate(); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	dataset := opts.Dataset
	if dataset == "" {
		dataset = contract.Name
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	// Elapsed covers the header read through the final persistence call.
	start := time.Now()

	dec := csvparser.NewDecoder(rc, csvparser.Options{
		Comma:      opts.Comma,
		LazyQuotes: opts.LazyQuotes,
		HeaderMap:  contract.HeaderMap,
	})
	header, err := dec.Header()
	if err != nil {
		return nil, err
	}
	if err := checkHeader(header, contract); err != nil {
		return nil, err
	}

	m := &Metrics{}
	defer func() { m.Elapsed = time.Since(start) }()

	readAhead := opts.ReadAhead
	if readAhead <= 0 {
		readAhead = defaultReadAhead
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	recs := make(chan records.Record, readAhead)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer close(recs)
		return dec.Stream(gctx, recs)
	})

	columns := contract.Columns()
	chunkNum := 0
	var lastBeat int64
	var runErr error
	for {
		chunk, more := nextChunk(recs, opts.ChunkSize)
		if !more {
			// The channel is closed, so the decoder has already exited.
			// A syntax failure poisons the rows buffered ahead of it:
			// surface it now, before the trailing partial chunk is
			// persisted.
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				runErr = err
				break
			}
		}
		if len(chunk) > 0 {
			chunkNum++
			if err := processChunk(runCtx, repo, contract, columns, chunk, m, dataset, chunkNum, opts.Verbose); err != nil {
				runErr = err
				cancel()
				break
			}
			if m.Processed/heartbeatEvery > lastBeat {
				lastBeat = m.Processed / heartbeatEvery
				elapsed := time.Since(start)
				log.Printf("ingest: dataset=%s progress processed=%d imported=%d rate=%.0f rows/s",
					dataset, m.Processed, m.Imported, float64(m.Processed)/elapsed.Seconds())
			}
		}
		if !more {
			break
		}
	}

	// The decoder goroutine exits on EOF, on cancel, or on a syntax error.
	// A syntax error outranks the cancellation it may have triggered.
	if err := g.Wait(); err != nil && runErr == nil && !errors.Is(err, context.Canceled) {
		runErr = err
	}
	// Our own cancel fires only after a persist failure, so a live parent
	// cancellation is the caller's abort.
	if runErr == nil {
		if err := ctx.Err(); err != nil {
			runErr = err
		}
	}

	imetrics.RecordRun(dataset, runErr, time.Since(start))
	if runErr != nil {
		return nil, runErr
	}
	return m, nil
}

// checkHeader rejects any header name the contract does not declare as a
// field or timestamp column. Missing columns are not an error here; required
// fields are enforced per row during conversion.
func checkHeader(header []string, c *schema.Contract) error {
	allowed := make(map[string]struct{}, len(c.Fields)+2)
	for _, col := range c.Columns() {
		allowed[col] = struct{}{}
	}
	var unknown []string
	for _, h := range header {
		if _, ok := allowed[h]; !ok {
			unknown = append(unknown, h)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &HeaderError{Unknown: unknown}
	}
	return nil
}

// processChunk converts, stamps, and persists one chunk, then folds the
// outcome into m. Conversion rejections are counted, not returned; only
// persistence failures are.
func processChunk(ctx context.Context, repo storage.Repository, c *schema.Contract, columns []string, chunk []records.Record, m *Metrics, dataset string, chunkNum int, verbose bool) error {
	chunkStart := time.Now()

	// Every row in a chunk shares one timestamp so re-runs and audits can
	// see chunk boundaries.
	var stamp time.Time
	if c.AutoTimestamps {
		stamp = time.Now().UTC().Truncate(time.Second)
	}

	rows := make([][]any, 0, len(chunk))
	invalid := 0
	for _, rec := range chunk {
		attrs, err := c.Convert(rec)
		if err != nil {
			invalid++
			if verbose {
				log.Printf("ingest: dataset=%s chunk=%d rejected row: %v", dataset, chunkNum, err)
			}
			continue
		}
		if c.AutoTimestamps {
			attrs[schema.CreatedAtColumn] = stamp
			attrs[schema.UpdatedAtColumn] = stamp
		}
		row := make([]any, len(columns))
		for i, col := range columns {
			if v, ok := attrs[col]; ok {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}

	imported, err := repo.InsertIgnore(ctx, columns, rows)
	if err != nil {
		return fmt.Errorf("persist chunk %d: %w", chunkNum, err)
	}

	processed := int64(len(chunk))
	valid := int64(len(rows))
	m.addChunk(processed, valid, imported)

	imetrics.RecordRows(dataset, "processed", processed)
	imetrics.RecordRows(dataset, "imported", imported)
	imetrics.RecordRows(dataset, "invalid", processed-valid)
	imetrics.RecordRows(dataset, "errors", valid-imported)
	imetrics.RecordChunk(dataset, time.Since(chunkStart))

	if verbose {
		log.Printf("ingest: dataset=%s chunk=%d processed=%d imported=%d invalid=%d errors=%d",
			dataset, chunkNum, processed, imported, processed-valid, valid-imported)
	}
	return nil
}
