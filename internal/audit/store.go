// File: store.go
// Title: Audit Trail Store
// Description: Persists pipeline audit records. SQLiteStore writes to a
//              WAL-mode SQLite database, MemoryStore keeps records in
//              memory for tests and one-shot runs. Both satisfy
//              pipeline.AuditLogger.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-12
// Modified: 2025-10-12
//
// Change History:
// - 2025-10-12 v0.1.0: Initial SQLite and in-memory audit stores

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/unilang/pkg/unilang/pipeline"
)

// Entry is a stored audit record
type Entry struct {
	ID string `json:"id"`
	pipeline.AuditRecord
}

// Filter defines criteria for querying audit entries
type Filter struct {
	Command   string
	SessionID string
	RequestID string
	// OnlyFailures restricts the result to failed instructions
	OnlyFailures bool
	StartTime    time.Time
	EndTime      time.Time
	Limit        int
	Offset       int
}

// Stats summarizes the stored entries
type Stats struct {
	Total     int64
	Failures  int64
	ByCommand map[string]int64
	LastEntry time.Time
}

// Store defines audit persistence
type Store interface {
	pipeline.AuditLogger
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/audit.db",
	}
}

// NewSQLiteStore opens or creates the audit database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dsn := ":memory:"
	if cfg.Path != "" && cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		request_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		command TEXT NOT NULL,
		arguments TEXT,
		success INTEGER NOT NULL,
		error_code TEXT,
		message TEXT,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_executions_timestamp ON executions(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_executions_command ON executions(command);
	CREATE INDEX IF NOT EXISTS idx_executions_session ON executions(session_id);
	CREATE INDEX IF NOT EXISTS idx_executions_request ON executions(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// LogExecution implements pipeline.AuditLogger
func (s *SQLiteStore) LogExecution(ctx context.Context, record pipeline.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	var argsJSON []byte
	if len(record.Arguments) > 0 {
		argsJSON, _ = json.Marshal(record.Arguments)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, timestamp, request_id, session_id, idx, command, arguments,
			success, error_code, message, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), record.Timestamp.UTC(), record.RequestID, record.SessionID, record.Index,
		record.Command, argsJSON, record.Success, record.ErrorCode, record.Message, int64(record.Duration))

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// Query retrieves entries newest first
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, request_id, session_id, idx, command, arguments, success,
		error_code, message, duration_ns FROM executions WHERE 1=1`
	var args []interface{}

	if filter.Command != "" {
		query += " AND command = ?"
		args = append(args, filter.Command)
	}
	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.RequestID != "" {
		query += " AND request_id = ?"
		args = append(args, filter.RequestID)
	}
	if filter.OnlyFailures {
		query += " AND success = 0"
	}
	if !filter.StartTime.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime.UTC())
	}

	query += " ORDER BY timestamp DESC, idx DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var argsJSON, errorCode, message sql.NullString
		var duration int64

		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.RequestID, &entry.SessionID,
			&entry.Index, &entry.Command, &argsJSON, &entry.Success, &errorCode, &message, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.ErrorCode = errorCode.String
		entry.Message = message.String
		entry.Duration = time.Duration(duration)
		if argsJSON.Valid && argsJSON.String != "" {
			json.Unmarshal([]byte(argsJSON.String), &entry.Arguments)
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Stats returns entry counts
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByCommand: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) FROM executions`).
		Scan(&stats.Total, &stats.Failures); err != nil {
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT command, COUNT(*) FROM executions GROUP BY command`)
	if err != nil {
		return nil, fmt.Errorf("failed to group audit entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var command string
		var count int64
		if err := rows.Scan(&command, &count); err != nil {
			return nil, err
		}
		stats.ByCommand[command] = count
	}

	// MAX() loses the column type, so read the newest row instead
	var last time.Time
	err = s.db.QueryRowContext(ctx, `SELECT timestamp FROM executions ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	if err == nil {
		stats.LastEntry = last
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	return stats, nil
}

// Prune removes entries older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM executions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-memory implementation of Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make([]*Entry, 0)}
}

// LogExecution implements pipeline.AuditLogger
func (s *MemoryStore) LogExecution(ctx context.Context, record pipeline.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	s.entries = append(s.entries, &Entry{ID: uuid.New().String(), AuditRecord: record})
	return nil
}

// Query retrieves entries newest first
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if filter.Command != "" && entry.Command != filter.Command {
			continue
		}
		if filter.SessionID != "" && entry.SessionID != filter.SessionID {
			continue
		}
		if filter.RequestID != "" && entry.RequestID != filter.RequestID {
			continue
		}
		if filter.OnlyFailures && entry.Success {
			continue
		}
		if !filter.StartTime.IsZero() && entry.Timestamp.Before(filter.StartTime) {
			continue
		}
		if !filter.EndTime.IsZero() && entry.Timestamp.After(filter.EndTime) {
			continue
		}
		results = append(results, entry)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(results) {
		results = results[:filter.Limit]
	}

	return results, nil
}

// Stats returns entry counts
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByCommand: make(map[string]int64)}
	for _, entry := range s.entries {
		stats.Total++
		if !entry.Success {
			stats.Failures++
		}
		stats.ByCommand[entry.Command]++
		if entry.Timestamp.After(stats.LastEntry) {
			stats.LastEntry = entry.Timestamp
		}
	}
	return stats, nil
}

// Prune removes old entries
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept

	return deleted, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}
