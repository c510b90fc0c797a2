// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mysql"    (ingest/internal/storage/mysql)
//   - "postgres" (ingest/internal/storage/postgres)
//   - "mssql"    (ingest/internal/storage/mssql)
//   - "sqlite"   (ingest/internal/storage/sqlite)
//
// A binary that supports only a subset of backends can blank-import the
// backend packages it needs instead of this one.
package all

import (
	_ "ingest/internal/storage/mssql"
	_ "ingest/internal/storage/mysql"
	_ "ingest/internal/storage/postgres"
	_ "ingest/internal/storage/sqlite"
)
