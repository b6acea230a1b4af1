//go:build !purego

package sqlite3

import (
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
)

const driverName = "sqlite3"
