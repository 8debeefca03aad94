// Package postgres provides PostgreSQL access for the table scanner.
//
// The scanner's physical-page mechanism maps directly onto PostgreSQL:
// tables are sequences of fixed-size blocks, and every stored row is
// addressable by its ctid (block, slot-within-block). The Cursor here
// walks block ranges with ctid set membership queries, which touch only
// the requested blocks and take no more locks than any ordinary SELECT.
//
// Database handles use the pgx driver through database/sql. Use Open()
// instead of sql.Open() to ensure the correct driver is used.
package postgres

import (
	"database/sql"
	"fmt"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

const driverName = "pgx"

// DriverName returns the SQL driver name to use.
func DriverName() string {
	return driverName
}

// Open opens a PostgreSQL database using the pgx driver.
// This is the preferred way to open scanner databases.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open(driverName, dsn)
}

// MustOpen opens a PostgreSQL database and panics on error.
// Use Open instead if you need to handle errors gracefully.
// This is intended for use in tests or initialization code where
// database access failure is unrecoverable.
func MustOpen(dsn string) *sql.DB {
	db, err := Open(dsn)
	if err != nil {
		panic(fmt.Sprintf("postgres: failed to open %s: %v", dsn, err))
	}
	return db
}
