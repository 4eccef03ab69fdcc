package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the audit tables. Times and durations are stored as integer
// nanoseconds so ordering and range deletes stay exact.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    conn_id TEXT NOT NULL,
    time_ns INTEGER NOT NULL,

    method TEXT NOT NULL,
    path TEXT NOT NULL,
    route TEXT NOT NULL,
    status INTEGER NOT NULL,

    prompt_hash TEXT,
    prompt_bytes INTEGER NOT NULL DEFAULT 0,
    response_bytes INTEGER NOT NULL DEFAULT 0,

    engine TEXT,
    duration_ns INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_records(time_ns);
CREATE INDEX IF NOT EXISTS idx_audit_route ON audit_records(route);
CREATE INDEX IF NOT EXISTS idx_audit_conn ON audit_records(conn_id);
`

// InsertSchemaVersion records the schema version if it is not present yet.
const InsertSchemaVersion = `
INSERT INTO schema_version (version) VALUES (?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	insertRecord = `
INSERT OR REPLACE INTO audit_records (
    id, conn_id, time_ns, method, path, route, status,
    prompt_hash, prompt_bytes, response_bytes, engine, duration_ns, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

	selectRecords = `
SELECT id, conn_id, time_ns, method, path, route, status,
       prompt_hash, prompt_bytes, response_bytes, engine, duration_ns, error
FROM audit_records
ORDER BY time_ns DESC, id DESC
`

	countRecords = `SELECT COUNT(*) FROM audit_records;`

	deleteBefore = `DELETE FROM audit_records WHERE time_ns < ?;`

	deleteOldest = `
DELETE FROM audit_records WHERE id IN (
    SELECT id FROM audit_records ORDER BY time_ns ASC, id ASC LIMIT ?
);
`
)
