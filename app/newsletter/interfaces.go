package newsletter

import (
	"context"

	"github.com/goncharom/yomu/app/content"
)

// Fetcher is the extraction service boundary: it produces the content items
// currently available for a source. Both transient and permanent failures
// are reported the same way; the coordinator skips the source either way.
type Fetcher interface {
	Fetch(ctx context.Context, sourceKey string) ([]content.Item, error)
}

// Deliverer hands a complete cycle's worth of new items to the delivery
// stage. Delivery is all-or-nothing: any error means nothing was delivered.
type Deliverer interface {
	Deliver(ctx context.Context, batches []SourceBatch) error
}
