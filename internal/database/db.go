package database

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// ErrStoreUnavailable marks a connection or query failure. The reconciliation
// loop must not advance its cursor when a read fails with this error.
var ErrStoreUnavailable = errors.New("store unavailable")

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(connectionString string) (*DB, error) {
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database connection: %v", ErrStoreUnavailable, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("%w: failed to ping database: %v", ErrStoreUnavailable, err)
	}

	return &DB{conn: conn}, nil
}

// NewFromConn wraps an existing connection; used by tests with sqlmock.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks if the database is reachable
func (db *DB) Ping() error {
	return db.conn.Ping()
}
