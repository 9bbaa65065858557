package mssql

import (
	"strings"
	"testing"

	"github.com/hristo-banchev/terraloc-ingest/internal/schema"
)

// TestBuildInsertSQL pins the NOT EXISTS insert shape: row values as @p1..@pN
// in column order, followed by the key guard parameters.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	r := &Repository{cfg: Config{Table: "dbo.locations", KeyColumns: []string{"name", "cc"}}}
	got := r.buildInsertSQL([]string{"name", "cc", "pop"})
	want := "INSERT INTO dbo.locations ([name], [cc], [pop]) SELECT @p1, @p2, @p3 " +
		"WHERE NOT EXISTS (SELECT 1 FROM dbo.locations WHERE [name] = @p4 AND [cc] = @p5)"
	if got != want {
		t.Fatalf("buildInsertSQL:\n got %q\nwant %q", got, want)
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	ddl, err := createTableSQL("dbo.locations", schema.Locations())
	if err != nil {
		t.Fatalf("createTableSQL: %v", err)
	}
	for _, want := range []string{
		"IF OBJECT_ID(N'dbo.locations', N'U') IS NULL CREATE TABLE dbo.locations",
		"[name] NVARCHAR(400) NOT NULL",
		"[latitude] FLOAT NOT NULL",
		"[inhabited] BIT",
		"[created_at] DATETIME2",
		"CONSTRAINT uq_dbo_locations UNIQUE ([name], [country_code])",
	} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("DDL missing %q:\n%s", want, ddl)
		}
	}
}
