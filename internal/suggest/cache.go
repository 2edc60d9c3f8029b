package suggest

import (
	"log/slog"
	"strings"
	"sync"
)

const (
	instrumentCacheKey = "instrument_cache"
	maxCacheEntries    = 200
)

// Instrument is one normalized ticker search result.
type Instrument struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Exchange string  `json:"exchange"`
	Price    float64 `json:"price,omitempty"`
}

// dedupKey is the composite identity used when merging pools: the same
// symbol can list on several exchanges, and vendor feeds occasionally
// rename instruments, so all three fields participate.
func (i Instrument) dedupKey() string {
	return strings.ToUpper(i.Symbol) + "|" + strings.ToUpper(i.Exchange) + "|" + strings.ToUpper(i.Name)
}

// MergeInstruments concatenates pools with first-occurrence-wins dedup by
// composite key. Callers put fresher data first.
func MergeInstruments(pools ...[]Instrument) []Instrument {
	var out []Instrument
	seen := make(map[string]bool)
	for _, pool := range pools {
		for _, inst := range pool {
			key := inst.dedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, inst)
		}
	}
	return out
}

// InstrumentCache is the persisted list of previously seen ticker search
// results, most-recently-seen first, capped at 200. It serves as the
// offline suggestion fallback before and between live search responses.
type InstrumentCache struct {
	mu      sync.Mutex
	entries []Instrument
	kv      KV
	log     *slog.Logger
}

// NewInstrumentCache creates a cache, loading persisted entries. Missing
// or corrupt stored data falls back to an empty cache.
func NewInstrumentCache(kv KV, log *slog.Logger) *InstrumentCache {
	c := &InstrumentCache{kv: kv, log: log}
	if kv != nil {
		var entries []Instrument
		if kv.Get(instrumentCacheKey, &entries) {
			if len(entries) > maxCacheEntries {
				entries = entries[:maxCacheEntries]
			}
			c.entries = entries
		}
	}
	return c
}

// Merge records search results at the front of the cache with dedup and
// cap, persisting synchronously. Merging the same results repeatedly is
// idempotent.
func (c *InstrumentCache) Merge(results []Instrument) {
	if len(results) == 0 {
		return
	}

	c.mu.Lock()
	merged := MergeInstruments(results, c.entries)
	if len(merged) > maxCacheEntries {
		merged = merged[:maxCacheEntries]
	}
	c.entries = merged
	c.persist()
	c.mu.Unlock()
}

// Entries returns a copy of the cache, most-recently-seen first.
func (c *InstrumentCache) Entries() []Instrument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Instrument, len(c.entries))
	copy(out, c.entries)
	return out
}

// persist writes the cache to storage. Must be called with mu held.
func (c *InstrumentCache) persist() {
	if c.kv == nil {
		return
	}
	if err := c.kv.Put(instrumentCacheKey, c.entries); err != nil && c.log != nil {
		c.log.Warn("persisting instrument cache", "error", err)
	}
}
