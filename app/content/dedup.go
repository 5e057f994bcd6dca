package content

import "sync"

const DefaultBufferCapacity = 1000

// FallbackBuffer tracks recently seen item identifiers per source, used to
// deduplicate items whose publication date is unusable. Each source gets a
// fixed-capacity FIFO ring: once full, the oldest identifier is evicted on
// insert, regardless of how recently it was hit. The buffer is in-memory
// only; an identifier that has aged out of a full ring is re-admitted as new.
type FallbackBuffer struct {
	capacity int
	mu       sync.Mutex
	rings    map[string]*ring
}

type ring struct {
	ids  []string
	head int
	seen map[string]struct{}
}

func NewFallbackBuffer(capacity int) *FallbackBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &FallbackBuffer{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// IsNewAndRecord reports whether identifier has not been seen for sourceKey
// and records it if so. A repeated identifier returns false without
// refreshing its position in the eviction order.
func (b *FallbackBuffer) IsNewAndRecord(sourceKey, identifier string) bool {
	if identifier == "" {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.rings[sourceKey]
	if !ok {
		r = &ring{
			ids:  make([]string, 0, b.capacity),
			seen: make(map[string]struct{}, b.capacity),
		}
		b.rings[sourceKey] = r
	}

	if _, exists := r.seen[identifier]; exists {
		return false
	}

	if len(r.ids) < b.capacity {
		r.ids = append(r.ids, identifier)
	} else {
		evicted := r.ids[r.head]
		delete(r.seen, evicted)
		r.ids[r.head] = identifier
		r.head = (r.head + 1) % b.capacity
	}
	r.seen[identifier] = struct{}{}

	return true
}

// Len returns the number of identifiers currently tracked for sourceKey.
func (b *FallbackBuffer) Len(sourceKey string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.rings[sourceKey]
	if !ok {
		return 0
	}
	return len(r.ids)
}
