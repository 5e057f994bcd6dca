package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goncharom/yomu/app/newsletter"
)

// SpoolDeliverer writes each cycle's digest as a JSON file into a spool
// directory, one file per cycle. The write is atomic (temp file plus
// rename), so a digest either fully exists or not at all; a partial write
// fails the whole delivery and the cycle retries on the next fire.
type SpoolDeliverer struct {
	dir string
	now func() time.Time
}

func NewSpoolDeliverer(dir string) *SpoolDeliverer {
	return &SpoolDeliverer{
		dir: dir,
		now: time.Now,
	}
}

type digest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Sources     []digestSource `json:"sources"`
}

type digestSource struct {
	SourceKey string       `json:"source_key"`
	Items     []digestItem `json:"items"`
}

type digestItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	Published   string `json:"published,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Deliver runs to completion even when ctx has been cancelled: a cycle
// that reached delivery finishes its digest and commit before shutdown.
func (d *SpoolDeliverer) Deliver(ctx context.Context, batches []newsletter.SourceBatch) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create spool directory: %w", err)
	}

	generatedAt := d.now().UTC()

	out := digest{GeneratedAt: generatedAt, Sources: make([]digestSource, 0, len(batches))}
	itemCount := 0
	for _, batch := range batches {
		src := digestSource{SourceKey: batch.SourceKey, Items: make([]digestItem, 0, len(batch.Items))}
		for _, item := range batch.Items {
			src.Items = append(src.Items, digestItem{
				Title:       item.Title,
				Link:        item.Link,
				Description: item.Description,
				Published:   item.Published,
				Source:      item.Source,
			})
			itemCount++
		}
		out.Sources = append(out.Sources, src)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}

	finalPath := filepath.Join(d.dir, fmt.Sprintf("digest-%s.json", generatedAt.Format("20060102-150405")))

	tmp, err := os.CreateTemp(d.dir, ".digest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create spool file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close spool file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish spool file: %w", err)
	}

	slog.Info("Digest delivered to spool",
		"file", finalPath,
		"sources", len(batches),
		"items", itemCount)

	return nil
}
