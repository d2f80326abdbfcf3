package store

const dropSQL = `
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS file_tracker;
`

// Records are stored exactly as parsed; rollups are never persisted.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    skipped_lines        INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    file_path            TEXT NOT NULL REFERENCES file_tracker(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    ts_sec               INTEGER NOT NULL,
    ts_nsec              INTEGER NOT NULL,
    session_id           TEXT NOT NULL,
    cwd                  TEXT NOT NULL DEFAULT '',
    model                TEXT NOT NULL,
    input_tokens         INTEGER NOT NULL,
    output_tokens        INTEGER NOT NULL,
    cache_creation       INTEGER NOT NULL,
    cache_read           INTEGER NOT NULL,
    cost_usd             REAL,
    PRIMARY KEY (file_path, seq)
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);
`

// schemaVersion is bumped whenever the parser changes what it accepts or
// the table layout changes. Either invalidates every cached file.
const schemaVersion = "2"
