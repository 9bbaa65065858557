package ingest

import (
	"fmt"
	"time"
)

// Metrics is the four-counter-plus-duration summary of one ingestion run.
//
// The counters satisfy processed == imported + invalid + errors for every
// chunk and therefore for the final total. Elapsed is set once, after the
// last chunk, and covers everything from just before the header read to the
// end of the final persistence call.
type Metrics struct {
	Processed int64 // data rows decoded and examined
	Imported  int64 // rows newly written by the store
	Invalid   int64 // rows rejected by validate-and-convert
	Errors    int64 // valid rows the store did not write (conflicts and other per-row rejections)

	Elapsed time.Duration
}

// addChunk folds one chunk's outcome into the running totals.
func (m *Metrics) addChunk(processed, valid, imported int64) {
	m.Processed += processed
	m.Imported += imported
	m.Invalid += processed - valid
	m.Errors += valid - imported
}

// ElapsedMicroseconds reports the finalized wall-clock duration at the
// resolution the run summary is audited in.
func (m *Metrics) ElapsedMicroseconds() int64 {
	return m.Elapsed.Microseconds()
}

func (m *Metrics) String() string {
	return fmt.Sprintf("processed=%d imported=%d invalid=%d errors=%d elapsed=%dµs",
		m.Processed, m.Imported, m.Invalid, m.Errors, m.ElapsedMicroseconds())
}
