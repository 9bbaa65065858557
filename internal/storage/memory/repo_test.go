package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hristo-banchev/terraloc-ingest/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

func TestInsertIgnore_DedupesOnKey(t *testing.T) {
	t.Parallel()

	r := New([]string{"name", "cc"})
	cols := []string{"name", "cc", "pop"}
	ctx := context.Background()

	n, err := r.InsertIgnore(ctx, cols, [][]any{
		{"Oslo", "NO", 709037},
		{"Bergen", "NO", 291940},
		{"Oslo", "NO", 1}, // key collision, different payload
	})
	if err != nil {
		t.Fatalf("InsertIgnore: %v", err)
	}
	if n != 2 || r.Len() != 2 {
		t.Fatalf("inserted=%d len=%d; want 2 2", n, r.Len())
	}

	// A later batch hits existing keys across calls too.
	n, err = r.InsertIgnore(ctx, cols, [][]any{{"Oslo", "NO", 2}, {"Sofia", "BG", 3}})
	if err != nil {
		t.Fatalf("InsertIgnore: %v", err)
	}
	if n != 1 || r.Len() != 3 {
		t.Fatalf("inserted=%d len=%d; want 1 3", n, r.Len())
	}

	// First write wins: the colliding payload was not overwritten.
	rows := r.Rows()
	if rows[0][2] != 709037 {
		t.Fatalf("row 0 = %v; want original payload", rows[0])
	}
}

// With no key columns, the whole row is the key, and nil is distinct from "".
func TestInsertIgnore_WholeRowKey(t *testing.T) {
	t.Parallel()

	r := New(nil)
	cols := []string{"a", "b"}
	n, err := r.InsertIgnore(context.Background(), cols, [][]any{
		{"x", nil},
		{"x", ""},
		{"x", nil},
	})
	if err != nil {
		t.Fatalf("InsertIgnore: %v", err)
	}
	if n != 2 || r.Len() != 2 {
		t.Fatalf("inserted=%d len=%d; want 2 2", n, r.Len())
	}
}

func TestInsertIgnore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Unknown key column.
	r := New([]string{"zz"})
	if _, err := r.InsertIgnore(ctx, []string{"a"}, [][]any{{"x"}}); err == nil {
		t.Fatal("want error for missing key column")
	}

	// Row width mismatch.
	r = New(nil)
	if _, err := r.InsertIgnore(ctx, []string{"a", "b"}, [][]any{{"x"}}); err == nil {
		t.Fatal("want error for row width mismatch")
	}

	// Injected failure.
	r = New(nil)
	boom := errors.New("boom")
	r.FailWith = boom
	if _, err := r.InsertIgnore(ctx, []string{"a"}, [][]any{{"x"}}); !errors.Is(err, boom) {
		t.Fatalf("err=%v; want injected failure", err)
	}

	// Empty batch is a no-op even when failure is injected.
	if n, err := r.InsertIgnore(ctx, []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
}

func TestFactoryRegistration(t *testing.T) {
	t.Parallel()

	repo, err := storage.New(context.Background(), storage.Config{Kind: "memory", KeyColumns: []string{"a"}})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*Repository); !ok {
		t.Fatalf("factory returned %T", repo)
	}
}
