// Package store provides a SQLite-backed cache of parsed usage records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed record caching keyed by file path.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	// One writer at a time; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	c := &Cache{db: db}
	if err := c.checkVersion(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// checkVersion drops all cached files written by a different schema version.
func (c *Cache) checkVersion() error {
	var v string
	err := c.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading cache version: %w", err)
	}
	if v == schemaVersion {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("resetting cache: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Rebuild rather than empty the tables; their layout may have changed.
	for _, stmt := range []string{dropSQL, schemaSQL} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("resetting cache: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		return fmt.Errorf("resetting cache: %w", err)
	}
	return tx.Commit()
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// TrackedFile is a cached file's tracking info plus what its parse skipped.
type TrackedFile struct {
	FileInfo
	SkippedLines int
}

// StatFile returns the tracking info for a file on disk.
func StatFile(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}, nil
}

// TrackedFiles returns every tracked file keyed by path.
func (c *Cache) TrackedFiles() (map[string]TrackedFile, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, skipped_lines FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]TrackedFile)
	for rows.Next() {
		var path string
		var tf TrackedFile
		if err := rows.Scan(&path, &tf.MtimeNs, &tf.SizeBytes, &tf.SkippedLines); err != nil {
			return nil, err
		}
		result[path] = tf
	}
	return result, rows.Err()
}

// SaveFile replaces the cached records of one file in a single transaction.
// skippedLines is the parse's malformed-line count, replayed on cache hits.
func (c *Cache) SaveFile(path string, fi FileInfo, records []model.UsageRecord, skippedLines int) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM records WHERE file_path = ?", path); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, skipped_lines, parsed_at)
		VALUES (?, ?, ?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes, skippedLines, now)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(file_path, seq, ts_sec, ts_nsec, session_id, cwd, model,
		 input_tokens, output_tokens, cache_creation, cache_read, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for seq, r := range records {
		var cost sql.NullFloat64
		if r.CostUSD != nil {
			cost = sql.NullFloat64{Float64: *r.CostUSD, Valid: true}
		}
		// Seconds plus nanos; UnixNano overflows past 2262.
		_, err = stmt.Exec(path, seq, r.Timestamp.Unix(), r.Timestamp.Nanosecond(), r.SessionID, r.ProjectPath, r.Model,
			r.Usage.InputTokens, r.Usage.OutputTokens,
			r.Usage.CacheCreationInputTokens, r.Usage.CacheReadInputTokens, cost,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFile returns the cached records of one file in their original order.
func (c *Cache) LoadFile(path string) ([]model.UsageRecord, error) {
	rows, err := c.db.Query(`SELECT
		ts_sec, ts_nsec, session_id, cwd, model,
		input_tokens, output_tokens, cache_creation, cache_read, cost_usd
		FROM records WHERE file_path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		var tsSec, tsNsec int64
		var cost sql.NullFloat64
		err := rows.Scan(&tsSec, &tsNsec, &r.SessionID, &r.ProjectPath, &r.Model,
			&r.Usage.InputTokens, &r.Usage.OutputTokens,
			&r.Usage.CacheCreationInputTokens, &r.Usage.CacheReadInputTokens, &cost)
		if err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(tsSec, tsNsec).UTC()
		if cost.Valid {
			v := cost.Float64
			r.CostUSD = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune forgets every tracked file not in keep and returns how many were dropped.
func (c *Cache) Prune(keep map[string]struct{}) (int, error) {
	tracked, err := c.TrackedFiles()
	if err != nil {
		return 0, err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	dropped := 0
	for path := range tracked {
		if _, ok := keep[path]; ok {
			continue
		}
		if _, err := tx.Exec("DELETE FROM records WHERE file_path = ?", path); err != nil {
			return 0, err
		}
		if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
			return 0, err
		}
		dropped++
	}
	return dropped, tx.Commit()
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}
