package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestMetricsAddChunk(t *testing.T) {
	t.Parallel()

	var m Metrics
	m.addChunk(5, 3, 2) // 2 invalid, 1 conflict
	m.addChunk(4, 4, 4) // clean chunk
	m.addChunk(1, 0, 0) // all invalid

	if m.Processed != 10 || m.Imported != 6 || m.Invalid != 3 || m.Errors != 1 {
		t.Fatalf("got %+v; want processed=10 imported=6 invalid=3 errors=1", m)
	}
	if m.Processed != m.Imported+m.Invalid+m.Errors {
		t.Fatalf("counter partition violated: %+v", m)
	}
}

func TestMetricsString(t *testing.T) {
	t.Parallel()

	m := Metrics{Processed: 2, Imported: 1, Invalid: 1, Elapsed: 1500 * time.Microsecond}
	s := m.String()
	for _, want := range []string{"processed=2", "imported=1", "invalid=1", "errors=0", "elapsed=1500µs"} {
		if !strings.Contains(s, want) {
			t.Fatalf("String()=%q missing %q", s, want)
		}
	}
}
