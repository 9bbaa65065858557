// Package csv implements the streaming decoder for delimited input with a
// header row. It reads incrementally through encoding/csv, emits one
// header-keyed record per data row on a caller-supplied channel, and never
// materializes the input. Low-level syntax errors (e.g. unbalanced quoting)
// are fatal to the stream; per-record content problems are not this package's
// concern.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/hristo-banchev/terraloc-ingest/pkg/records"
)

// Options configures the decoder. Zero values apply sensible defaults.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// LazyQuotes relaxes quote handling for inputs with unescaped quotes.
	LazyQuotes bool

	// HeaderMap maps source header names to canonical field names, applied
	// after generic header folding.
	HeaderMap map[string]string
}

// Decoder streams records from one delimited input. Not concurrency-safe;
// use one Decoder per run.
type Decoder struct {
	cr     *csv.Reader
	opt    Options
	header []string
	line   int
}

// NewDecoder wraps r. Nothing is read until Header or Stream is called.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	cr := csv.NewReader(r)
	cr.Comma = ','
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	// Width is validated against the header by keying, not by the tokenizer.
	cr.FieldsPerRecord = -1
	return &Decoder{cr: cr, opt: opt}
}

// Header reads the first row (once) and returns the canonical header names.
func (d *Decoder) Header() ([]string, error) {
	if d.header != nil {
		return d.header, nil
	}
	d.line++
	raw, err := d.cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	hdr := CanonicalHeader(raw, d.opt.HeaderMap)
	// csv.Reader reuses its record buffer; CanonicalHeader already copied.
	d.header = hdr
	return d.header, nil
}

// Stream decodes every remaining data row into a records.Record keyed by the
// canonical header and sends it on out. It returns nil on EOF and a wrapped
// error on the first low-level decode failure; either way the caller owns
// closing out. Cells that are empty after trimming are omitted from the
// record. Rows wider than the header have their extra cells dropped.
//
// Stream blocks on out; run it in a goroutine with a bounded channel to get
// a fixed read-ahead window. Cancelling ctx unblocks a pending send.
func (d *Decoder) Stream(ctx context.Context, out chan<- records.Record) error {
	header, err := d.Header()
	if err != nil {
		return err
	}
	for {
		d.line++
		row, err := d.cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode line %d: %w", d.line, err)
		}

		rec := make(records.Record, len(header))
		for i, name := range header {
			if i >= len(row) {
				break
			}
			if v := trimCell(row[i]); v != "" {
				// ReuseRecord means row cells alias a buffer the next Read
				// overwrites; the record must own its values.
				rec[name] = strings.Clone(v)
			}
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// trimCell removes leading/trailing ASCII whitespace without allocating when
// the cell has no edge space.
func trimCell(s string) string {
	if len(s) == 0 {
		return s
	}
	if !isSpace(s[0]) && !isSpace(s[len(s)-1]) {
		return s
	}
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
