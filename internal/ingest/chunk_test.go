package ingest

import (
	"testing"

	"github.com/hristo-banchev/terraloc-ingest/pkg/records"
)

func feed(recs ...records.Record) chan records.Record {
	ch := make(chan records.Record, len(recs))
	for _, r := range recs {
		ch <- r
	}
	close(ch)
	return ch
}

func TestNextChunk(t *testing.T) {
	t.Parallel()

	a := records.Record{"n": "a"}
	b := records.Record{"n": "b"}
	c := records.Record{"n": "c"}

	// Full chunk with leftovers signals more=true.
	ch := feed(a, b, c)
	chunk, more := nextChunk(ch, 2)
	if len(chunk) != 2 || !more {
		t.Fatalf("chunk=%d more=%v; want 2 true", len(chunk), more)
	}
	if chunk[0]["n"] != "a" || chunk[1]["n"] != "b" {
		t.Fatalf("order not preserved: %v", chunk)
	}

	// The drain picks up the remainder as a short final chunk.
	chunk, more = nextChunk(ch, 2)
	if len(chunk) != 1 || more {
		t.Fatalf("chunk=%d more=%v; want 1 false", len(chunk), more)
	}

	// Closed and empty: empty final chunk.
	chunk, more = nextChunk(ch, 2)
	if len(chunk) != 0 || more {
		t.Fatalf("chunk=%d more=%v; want 0 false", len(chunk), more)
	}

	// An exact-size final chunk still reports more=true; the following call
	// returns the empty terminator.
	ch = feed(a, b)
	if chunk, more = nextChunk(ch, 2); len(chunk) != 2 || !more {
		t.Fatalf("chunk=%d more=%v; want 2 true", len(chunk), more)
	}
	if chunk, more = nextChunk(ch, 2); len(chunk) != 0 || more {
		t.Fatalf("chunk=%d more=%v; want 0 false", len(chunk), more)
	}
}
