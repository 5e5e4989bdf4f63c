// Package store caches connector and completion results in a local SQLite
// database. Caching is an optimization, never a correctness mechanism: the
// indexing poller explicitly invalidates document-query entries before each
// attempt so it can observe state changes.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"axinsight/internal/core"
)

// Store is the SQLite-based result cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store instance, creating the data directory and schema
// as needed.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "axinsight.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS news_queries (
			query_key TEXT PRIMARY KEY,
			items TEXT,
			date_cached DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS doc_queries (
			query_key TEXT PRIMARY KEY,
			chunks TEXT,
			date_cached DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS completions (
			prompt_hash TEXT PRIMARY KEY,
			response TEXT,
			date_cached DATETIME
		);`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key hashes the given parts into a cache key.
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// CacheNews stores a news result set under the query key.
func (s *Store) CacheNews(queryKey string, items []core.NewsItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal news items: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO news_queries (query_key, items, date_cached) VALUES (?, ?, ?)`,
		queryKey, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache news query: %w", err)
	}
	return nil
}

// GetCachedNews returns a cached news result set, or nil when missing or
// older than maxAge.
func (s *Store) GetCachedNews(queryKey string, maxAge time.Duration) ([]core.NewsItem, error) {
	payload, ok, err := s.lookup("news_queries", "items", queryKey, maxAge)
	if err != nil || !ok {
		return nil, err
	}
	var items []core.NewsItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached news: %w", err)
	}
	return items, nil
}

// CacheDocQuery stores a document query result under the query key.
func (s *Store) CacheDocQuery(queryKey string, chunks []core.DocumentChunk) error {
	payload, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("failed to marshal document chunks: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO doc_queries (query_key, chunks, date_cached) VALUES (?, ?, ?)`,
		queryKey, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache document query: %w", err)
	}
	return nil
}

// GetCachedDocQuery returns a cached document query result, or nil when
// missing or older than maxAge.
func (s *Store) GetCachedDocQuery(queryKey string, maxAge time.Duration) ([]core.DocumentChunk, error) {
	payload, ok, err := s.lookup("doc_queries", "chunks", queryKey, maxAge)
	if err != nil || !ok {
		return nil, err
	}
	var chunks []core.DocumentChunk
	if err := json.Unmarshal([]byte(payload), &chunks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached chunks: %w", err)
	}
	return chunks, nil
}

// InvalidateDocQueries drops every cached document query. The poller calls
// this before each attempt; a stale "no hit" entry would otherwise be
// observed forever.
func (s *Store) InvalidateDocQueries() error {
	if _, err := s.db.Exec(`DELETE FROM doc_queries`); err != nil {
		return fmt.Errorf("failed to invalidate document queries: %w", err)
	}
	return nil
}

// CacheCompletion stores a completion response under the prompt hash.
func (s *Store) CacheCompletion(promptHash, response string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO completions (prompt_hash, response, date_cached) VALUES (?, ?, ?)`,
		promptHash, response, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache completion: %w", err)
	}
	return nil
}

// GetCachedCompletion returns a cached completion response and whether one
// was found within maxAge.
func (s *Store) GetCachedCompletion(promptHash string, maxAge time.Duration) (string, bool, error) {
	return s.lookup("completions", "response", promptHash, maxAge)
}

// lookup fetches one payload column by primary key, enforcing maxAge.
func (s *Store) lookup(table, column, key string, maxAge time.Duration) (string, bool, error) {
	var payload string
	var dateCached time.Time
	row := s.db.QueryRow(
		fmt.Sprintf(`SELECT %s, date_cached FROM %s WHERE %s = ?`, column, table, primaryKey(table)),
		key,
	)
	if err := row.Scan(&payload, &dateCached); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query %s: %w", table, err)
	}
	if maxAge > 0 && time.Since(dateCached) > maxAge {
		return "", false, nil
	}
	return payload, true, nil
}

func primaryKey(table string) string {
	switch table {
	case "completions":
		return "prompt_hash"
	default:
		return "query_key"
	}
}

// CacheStats summarizes cache contents.
type CacheStats struct {
	NewsQueries int
	DocQueries  int
	Completions int
	SizeBytes   int64
}

// GetCacheStats returns row counts per table and the database file size.
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}
	for table, target := range map[string]*int{
		"news_queries": &stats.NewsQueries,
		"doc_queries":  &stats.DocQueries,
		"completions":  &stats.Completions,
	} {
		row := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table))
		if err := row.Scan(target); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// ClearCache removes every cached entry.
func (s *Store) ClearCache() error {
	for _, table := range []string{"news_queries", "doc_queries", "completions"} {
		if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
