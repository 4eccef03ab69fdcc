package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"workspaces-inventory/phi3/pkg/audit"
	"workspaces-inventory/phi3/pkg/config"
)

const backendSQLite = "sqlite"

// SQLiteStorage implements audit.Storage on a SQLite database file.
type SQLiteStorage struct {
	db     *sql.DB
	config *config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at cfg.Path and
// applies the schema.
func NewSQLiteStorage(cfg *config.SQLiteConfig) (*SQLiteStorage, error) {
	if cfg == nil {
		cfg = &config.Default().Audit.SQLite
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, audit.NewStorageError(backendSQLite, "create_dir", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "open", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite audit storage initialized",
		"path", cfg.Path,
		"wal_mode", !cfg.DisableWAL,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if !s.config.DisableWAL {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError(backendSQLite, "enable_wal", err)
		}
	}

	busy := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
	if _, err := s.db.Exec(busy); err != nil {
		return audit.NewStorageError(backendSQLite, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(backendSQLite, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return audit.NewStorageError(backendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store inserts or replaces a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		record.ID,
		record.ConnID,
		record.Time.UnixNano(),
		record.Method,
		record.Path,
		record.Route,
		record.Status,
		nullString(record.PromptHash),
		record.PromptBytes,
		record.ResponseBytes,
		nullString(record.Engine),
		int64(record.Duration),
		nullString(record.Error),
	)
	if err != nil {
		return audit.NewStorageError(backendSQLite, "store", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countRecords).Scan(&n); err != nil {
		return 0, audit.NewStorageError(backendSQLite, "count", err)
	}
	return n, nil
}

// List returns up to limit records, newest first.
func (s *SQLiteStorage) List(ctx context.Context, limit int) ([]*audit.Record, error) {
	query := selectRecords
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStorageError(backendSQLite, "list", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError(backendSQLite, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(backendSQLite, "list", err)
	}
	return records, nil
}

// DeleteBefore removes records older than t.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteBefore, t.UnixNano())
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_before", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_before", err)
	}
	return n, nil
}

// DeleteOldest removes the n oldest records.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, deleteOldest, n)
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_oldest", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(backendSQLite, "delete_oldest", err)
	}
	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError(backendSQLite, "close", err)
	}
	s.logger.Info("sqlite audit storage closed")
	return nil
}

func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var (
		r                          audit.Record
		timeNs, durationNs         int64
		promptHash, engine, errMsg sql.NullString
	)
	err := rows.Scan(
		&r.ID,
		&r.ConnID,
		&timeNs,
		&r.Method,
		&r.Path,
		&r.Route,
		&r.Status,
		&promptHash,
		&r.PromptBytes,
		&r.ResponseBytes,
		&engine,
		&durationNs,
		&errMsg,
	)
	if err != nil {
		return nil, err
	}
	r.Time = time.Unix(0, timeNs)
	r.Duration = time.Duration(durationNs)
	r.PromptHash = promptHash.String
	r.Engine = engine.String
	r.Error = errMsg.String
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
