package ingest

import "github.com/hristo-banchev/terraloc-ingest/pkg/records"

// nextChunk drains up to size records from in, preserving arrival order. The
// second return is false once the channel is closed and fully drained, which
// means the returned (possibly short or empty) chunk is the last one.
func nextChunk(in <-chan records.Record, size int) ([]records.Record, bool) {
	chunk := make([]records.Record, 0, size)
	for rec := range in {
		chunk = append(chunk, rec)
		if len(chunk) == size {
			return chunk, true
		}
	}
	return chunk, false
}
