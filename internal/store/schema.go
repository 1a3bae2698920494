package store

// schemaVersionV1 is the only schema so far. The version table exists from
// day one so later migrations follow the same guard the fresh install does.
const schemaVersionV1 = 1

const schemaV1 = `
CREATE TABLE schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	compiler    TEXT NOT NULL,
	degraded    INTEGER NOT NULL DEFAULT 0,
	passed      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	conflicts   INTEGER NOT NULL DEFAULT 0,
	report_path TEXT
);

CREATE TABLE attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	target      TEXT NOT NULL,
	profile     TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	category    TEXT,
	excerpt     TEXT,
	conflict    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_attempts_run ON attempts(run_id);
`
