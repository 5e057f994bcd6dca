package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ CacheRepository = (*SQLCacheRepository)(nil)

// SQLCacheRepository handles database operations for the extraction cache.
type SQLCacheRepository struct {
	db *DB
}

func NewCacheRepository(db *DB) *SQLCacheRepository {
	return &SQLCacheRepository{db: db}
}

func (r *SQLCacheRepository) Get(cacheKey string) (*CacheEntry, error) {
	var entry CacheEntry
	var fetchedAt string
	err := r.db.QueryRow(`
		SELECT cache_key, etag, last_modified, fetched_at
		FROM extraction_cache
		WHERE cache_key = ?
	`, cacheKey).Scan(&entry.CacheKey, &entry.ETag, &entry.LastModified, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry for %s: %w", cacheKey, err)
	}

	entry.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache timestamp %q: %w", fetchedAt, err)
	}
	entry.FetchedAt = entry.FetchedAt.UTC()

	return &entry, nil
}

func (r *SQLCacheRepository) Put(entry CacheEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO extraction_cache (cache_key, etag, last_modified, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			fetched_at = excluded.fetched_at
	`, entry.CacheKey, entry.ETag, entry.LastModified, entry.FetchedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("failed to put cache entry for %s: %w", entry.CacheKey, err)
	}

	return nil
}

func (r *SQLCacheRepository) ClearAll() (int64, error) {
	result, err := r.db.Exec("DELETE FROM extraction_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared cache entries: %w", err)
	}

	return deleted, nil
}

func (r *SQLCacheRepository) ClearKeys(cacheKeys []string) (int64, error) {
	if len(cacheKeys) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(cacheKeys)-1) + "?"
	args := make([]interface{}, len(cacheKeys))
	for i, key := range cacheKeys {
		args[i] = key
	}

	result, err := r.db.Exec(
		"DELETE FROM extraction_cache WHERE cache_key IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache keys: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared cache entries: %w", err)
	}

	return deleted, nil
}
