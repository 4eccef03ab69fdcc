// Package storage provides audit.Storage backends.
//
// MemoryStorage keeps records in a map and suits tests and short-lived runs.
// SQLiteStorage persists to a single file through github.com/mattn/go-sqlite3,
// with write-ahead logging on by default and a schema_version table checked at
// open.
package storage
