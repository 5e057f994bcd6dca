package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goncharom/yomu/app/config"
	"github.com/goncharom/yomu/app/content"
	"github.com/goncharom/yomu/app/database"
)

// Coordinator executes one collection cycle per scheduled fire:
// fetch every configured source, filter out items already seen, hand the
// aggregate to delivery, and record the run. Collection is best-effort per
// source; delivery and commit are all-or-nothing for the cycle.
type Coordinator struct {
	config    *config.Config
	fetcher   Fetcher
	deliverer Deliverer
	runs      database.RunRepository
	filterer  *content.Filterer
	buffer    *content.FallbackBuffer

	// mu serialises cycles; phase has its own lock so /health and
	// /stats can observe it while a cycle is in flight.
	mu      sync.Mutex
	phaseMu sync.Mutex
	phase   Phase

	now func() time.Time
}

func NewCoordinator(cfg *config.Config, fetcher Fetcher, deliverer Deliverer,
	runs database.RunRepository, buffer *content.FallbackBuffer) *Coordinator {
	return &Coordinator{
		config:    cfg,
		fetcher:   fetcher,
		deliverer: deliverer,
		runs:      runs,
		filterer:  content.NewFilterer(),
		buffer:    buffer,
		phase:     PhaseIdle,
		now:       time.Now,
	}
}

// Phase returns the coordinator's current cycle phase. It never blocks on
// a running cycle.
func (c *Coordinator) Phase() Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phase
}

type collectedSource struct {
	sourceKey string
	items     []content.Item
}

// RunCycle executes one full cycle. A fetch failure skips that source for
// the cycle; a delivery failure aborts the cycle without committing any
// source. Run records advance to the cycle's start instant, never to item
// timestamps.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cycleStart := c.now().UTC()

	if err := c.advance(PhaseCollecting); err != nil {
		return err
	}

	collected, failedCount, err := c.collect(ctx)
	if err != nil {
		c.fail()
		return err
	}

	if err := c.advance(PhaseFiltering); err != nil {
		return err
	}

	batches, committable, totalNew := c.filter(collected)

	if err := c.advance(PhaseDelivering); err != nil {
		return err
	}

	if totalNew > 0 {
		if err := c.deliverer.Deliver(ctx, batches); err != nil {
			slog.Error("Delivery failed, cycle aborted without commit",
				"phase", PhaseDelivering, "sources", len(batches), "items", totalNew, "error", err)
			c.fail()
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
	} else {
		slog.Info("No new items, delivery skipped", "phase", PhaseDelivering)
	}

	if err := c.advance(PhaseCommitting); err != nil {
		return err
	}

	committedCount := 0
	for _, sourceKey := range committable {
		if err := c.runs.SetLastRun(sourceKey, cycleStart); err != nil {
			slog.Error("Failed to record run", "phase", PhaseCommitting, "source", sourceKey, "error", err)
			continue
		}
		committedCount++
	}

	if err := c.advance(PhaseIdle); err != nil {
		return err
	}

	slog.Info("Cycle completed",
		"duration", time.Since(cycleStart),
		"sources", len(c.config.Sources),
		"failed_sources", failedCount,
		"new_items", totalNew,
		"committed", committedCount)

	return nil
}

// collect fetches every source with the configured per-source timeout.
// A failing source is logged and skipped; context cancellation between
// sources aborts the cycle.
func (c *Coordinator) collect(ctx context.Context) ([]collectedSource, int, error) {
	timeout := time.Duration(c.config.PerSourceTimeout) * time.Second

	var collected []collectedSource
	failedCount := 0

	for _, sourceKey := range c.config.Sources {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown requested, aborting cycle", "phase", PhaseCollecting)
			return nil, failedCount, ctx.Err()
		default:
		}

		fetchCtx, cancel := ctx, context.CancelFunc(func() {})
		if timeout > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		items, err := c.fetcher.Fetch(fetchCtx, sourceKey)
		cancel()

		if err != nil {
			slog.Warn("Source fetch failed, skipping for this cycle",
				"phase", PhaseCollecting, "source", sourceKey, "error", err)
			failedCount++
			continue
		}

		collected = append(collected, collectedSource{sourceKey: sourceKey, items: items})
	}

	return collected, failedCount, nil
}

// filter applies the recency filter and fallback dedup per source, capping
// each source at max_articles_per_source while preserving fetch order.
// It returns the delivery batches, the sources eligible for commit, and the
// total number of new items.
func (c *Coordinator) filter(collected []collectedSource) ([]SourceBatch, []string, int) {
	var batches []SourceBatch
	var committable []string
	totalNew := 0

	for _, src := range collected {
		lastRun, err := c.runs.GetLastRun(src.sourceKey)
		if err != nil {
			slog.Warn("Failed to read run history, skipping source for this cycle",
				"phase", PhaseFiltering, "source", src.sourceKey, "error", err)
			continue
		}

		selected := c.selectNewItems(src, lastRun)

		if max := c.config.MaxArticlesPerSource; len(selected) > max {
			slog.Info("Source item limit applied",
				"phase", PhaseFiltering, "source", src.sourceKey, "total", len(selected), "limit", max)
			selected = selected[:max]
		}

		if len(selected) > 0 {
			batches = append(batches, SourceBatch{SourceKey: src.sourceKey, Items: selected})
			totalNew += len(selected)
		}

		// A successful empty collection still commits, so old dated
		// windows are not re-scanned forever.
		committable = append(committable, src.sourceKey)
	}

	return batches, committable, totalNew
}

// selectNewItems merges the recency filter's dated decisions with the
// fallback buffer's seen/unseen decisions for undated items, keeping the
// original fetch order intact.
func (c *Coordinator) selectNewItems(src collectedSource, lastRun *time.Time) []content.Item {
	fresh, undated := c.filterer.Run(src.items, lastRun)

	selected := make([]content.Item, 0, len(fresh)+len(undated))
	fi, ui := 0, 0
	for _, item := range src.items {
		switch {
		case fi < len(fresh) && item == fresh[fi]:
			fi++
			selected = append(selected, item)
		case ui < len(undated) && item == undated[ui]:
			ui++
			if c.buffer.IsNewAndRecord(src.sourceKey, item.Link) {
				selected = append(selected, item)
			}
		}
	}

	return selected
}

func (c *Coordinator) advance(to Phase) error {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	next, err := transition(c.phase, to)
	c.phase = next
	return err
}

func (c *Coordinator) fail() {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	c.phase = PhaseFailed
}
