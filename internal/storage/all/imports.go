// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "mysql"    (nycetl/internal/storage/mysql)
//   - "postgres" (nycetl/internal/storage/postgres)
//   - "sqlite"   (nycetl/internal/storage/sqlite)
//   - "mssql"    (nycetl/internal/storage/mssql)
//
// Typical usage (in cmd/nycetl or a similar wiring layer):
//
//	import _ "nycetl/internal/storage/all" // enable all built-in backends
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the storage
// abstraction rather than individual backends.
package all

import (
	_ "nycetl/internal/storage/mssql"
	_ "nycetl/internal/storage/mysql"
	_ "nycetl/internal/storage/postgres"
	_ "nycetl/internal/storage/sqlite"
)
