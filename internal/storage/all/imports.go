// Package all wires every built-in storage backend into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and DDL bootstrappers with the storage package. After that,
// the following storage kinds are available at runtime:
//
//   - "postgres"
//   - "mysql"
//   - "mssql"
//   - "sqlite"
//   - "memory"
//
// Binaries that need only a subset of backends can blank-import the
// individual packages instead.
package all

import (
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/memory"
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/mssql"
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/mysql"
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/postgres"
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/sqlite"
)
