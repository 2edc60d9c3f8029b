package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// SearchClient performs a remote ticker search. Satisfied by
// backend.Client.
type SearchClient interface {
	SearchInstruments(ctx context.Context, query string) ([]Instrument, error)
}

// Searcher coordinates overlapping ticker searches with request-generation
// tagging: only the response matching the most recently issued request is
// applied to the visible result set, so out-of-order network replies never
// corrupt the suggestion list. Successful responses always merge into the
// instrument cache, stale or not; only the visible set is generation-
// checked.
type Searcher struct {
	client SearchClient
	cache  *InstrumentCache
	log    *slog.Logger

	mu      sync.Mutex
	gen     uint64
	results []Instrument
}

// NewSearcher creates a Searcher feeding the given cache.
func NewSearcher(client SearchClient, cache *InstrumentCache, log *slog.Logger) *Searcher {
	return &Searcher{client: client, cache: cache, log: log}
}

// Begin registers a new search request and returns its generation tag.
func (s *Searcher) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Apply installs results as the visible set if gen is still the latest
// request. It reports whether the results were applied.
func (s *Searcher) Apply(gen uint64, results []Instrument) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.results = results
	return true
}

// Results returns the visible result set of the latest applied search.
func (s *Searcher) Results() []Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Instrument, len(s.results))
	copy(out, s.results)
	return out
}

// Run issues one search end to end: it tags the request, performs the
// remote call, merges any results into the cache, and applies the visible
// set under the generation check. A failed call collapses to an empty
// visible set for this source only. It reports whether the visible set was
// updated.
func (s *Searcher) Run(ctx context.Context, query string) bool {
	gen := s.Begin()

	query = strings.TrimSpace(query)
	if query == "" {
		return s.Apply(gen, nil)
	}

	results, err := s.client.SearchInstruments(ctx, query)
	if err != nil {
		if s.log != nil {
			s.log.Warn("instrument search failed", "query", query, "error", err)
		}
		return s.Apply(gen, nil)
	}

	// Cache learning happens regardless of staleness; the generation tag
	// guards only the visible results.
	s.cache.Merge(results)

	return s.Apply(gen, results)
}
