//go:build purego

// Build with -tags purego for a Sqlite driver that does not need cgo.

package sqlite3

import (
	_ "modernc.org/sqlite" // register the sqlite type for sql.Open
)

const driverName = "sqlite"
