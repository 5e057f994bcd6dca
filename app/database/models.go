package database

import (
	"time"
)

// RunRecord is the per-source run history row. LastSuccessfulRun is nil for
// a source that has never completed a collection cycle.
type RunRecord struct {
	SourceKey         string
	LastSuccessfulRun *time.Time
}

// CacheEntry holds HTTP validators for a source, used by the extraction
// adapter for conditional requests.
type CacheEntry struct {
	CacheKey     string
	ETag         string
	LastModified string
	FetchedAt    time.Time
}
