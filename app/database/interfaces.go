package database

import (
	"time"
)

// RunRepository is the Run History Store: one record per source holding the
// timestamp of its last fully successful collection cycle.
type RunRepository interface {
	GetLastRun(sourceKey string) (*time.Time, error)
	SetLastRun(sourceKey string, timestamp time.Time) error
	ListRuns() ([]RunRecord, error)
}

// CacheRepository stores HTTP validators for the extraction adapter. Clear
// operations back the cache-clearing CLI modes.
type CacheRepository interface {
	Get(cacheKey string) (*CacheEntry, error)
	Put(entry CacheEntry) error
	ClearAll() (int64, error)
	ClearKeys(cacheKeys []string) (int64, error)
}
