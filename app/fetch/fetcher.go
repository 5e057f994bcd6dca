package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/goncharom/yomu/app/content"
	"github.com/goncharom/yomu/app/database"
)

// HTTPFetcher retrieves a source's feed over HTTP and normalizes it into
// content items. Conditional requests use validators remembered in the
// extraction cache; a 304 response counts as a successful collection with
// zero items.
type HTTPFetcher struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	cache      database.CacheRepository
	userAgent  string
}

func NewHTTPFetcher(httpClient *http.Client, cache database.CacheRepository, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		cache:      cache,
		userAgent:  userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, sourceKey string) ([]content.Item, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", sourceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	cached, err := f.cache.Get(sourceKey)
	if err != nil {
		slog.Warn("Failed to read extraction cache, fetching unconditionally",
			"source", sourceKey, "error", err)
	} else if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		slog.Debug("Source not modified since last fetch", "source", sourceKey)
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	items, err := f.parse(data)
	if err != nil {
		return nil, err
	}

	f.storeValidators(sourceKey, resp)

	return items, nil
}

// parse normalizes the feed payload. The raw published string is carried
// through untouched so the recency filter applies its own format list.
func (f *HTTPFetcher) parse(data []byte) ([]content.Item, error) {
	feed, err := f.parser.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]content.Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, content.Item{
			Title:       item.Title,
			Link:        f.coalesce(item.Link, item.GUID),
			Description: item.Description,
			Published:   item.Published,
			Source:      feed.Title,
		})
	}

	return items, nil
}

// storeValidators remembers the response's ETag and Last-Modified for the
// next conditional request. A cache write failure only costs one
// unconditional fetch, so it is logged and dropped.
func (f *HTTPFetcher) storeValidators(sourceKey string, resp *http.Response) {
	etag := resp.Header.Get("ETag")
	lastModified := resp.Header.Get("Last-Modified")
	if etag == "" && lastModified == "" {
		return
	}

	entry := database.CacheEntry{
		CacheKey:     sourceKey,
		ETag:         etag,
		LastModified: lastModified,
		FetchedAt:    time.Now().UTC(),
	}
	if err := f.cache.Put(entry); err != nil {
		slog.Warn("Failed to store extraction cache entry", "source", sourceKey, "error", err)
	}
}

func (f *HTTPFetcher) coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
