package content

import "time"

// Filterer classifies fetched items as new or old relative to a source's
// last successful run.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run splits items into fresh and undated. An item with a parseable
// publication date is fresh when it is strictly newer than lastRun, or
// unconditionally when lastRun is nil (first run for the source). Items
// whose date cannot be parsed are returned as undated for a separate
// seen/unseen decision; they are never discarded here. Input order is
// preserved in both result slices.
func (f *Filterer) Run(items []Item, lastRun *time.Time) (fresh []Item, undated []Item) {
	for _, item := range items {
		publishedAt, ok := ParseDate(item.Published)
		if !ok {
			undated = append(undated, item)
			continue
		}

		if lastRun == nil || publishedAt.After(lastRun.UTC()) {
			fresh = append(fresh, item)
		}
	}

	return fresh, undated
}
