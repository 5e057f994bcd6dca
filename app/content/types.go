package content

// Item is a single fetched content item as produced by the extraction
// service. Published carries the raw publication date string; interpretation
// is deferred to the recency filter so that unparseable dates can be routed
// to fallback deduplication instead of being coerced.
type Item struct {
	Title       string
	Link        string
	Description string
	Published   string
	Source      string
}
