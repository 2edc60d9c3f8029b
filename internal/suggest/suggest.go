// Package suggest implements the GO bar suggestion engine: the persisted
// command history, the instrument cache, a generation-tagged live search
// coordinator, and the ranker that merges all candidate sources into one
// score-sorted suggestion list.
package suggest

import (
	"sort"
	"strings"

	"marketterm/internal/command"
)

// SuggestionKind tags the source of a suggestion.
type SuggestionKind string

const (
	SuggestionFunction SuggestionKind = "function"
	SuggestionTicker   SuggestionKind = "ticker"
	SuggestionRecent   SuggestionKind = "recent"
)

// Suggestion is one entry in the GO bar dropdown. Command is the string to
// re-submit when the user selects it. Key is the dedup identity, unique
// within one list.
type Suggestion struct {
	Kind     SuggestionKind
	Key      string
	Title    string
	Subtitle string
	Command  string
	Price    float64 // ticker suggestions only; 0 when unknown
}

// KV is the persistence surface the suggestion stores need. Satisfied by
// localstore.Store.
type KV interface {
	Get(key string, dest any) bool
	Put(key string, v any) error
}

// List caps.
const (
	maxSuggestions        = 12
	maxReverseSuggestions = 20

	maxHistoryMatched  = 6
	maxHistoryRecent   = 4
	maxFunctionMatched = 8
	maxFunctionRecent  = 6
	maxTickerMatched   = 8
	maxTickerRecent    = 4
	maxTickerPool      = 80
)

// Score band multipliers for a non-empty query. Ticker symbol matches
// outrank function catalog matches, which outrank history matches; the
// bands overlap so a strong function match can still beat a weak ticker
// subsequence.
const (
	tickerSymbolWeight = 3
	functionWeight     = 2
)

// Empty-query recency bands: recent history first, then catalog order,
// then cached tickers.
const (
	recentHistoryBase  = 400
	recentFunctionBase = 300
	recentTickerBase   = 200
)

// scored pairs a suggestion with its internal score; scores are stripped
// before the list is returned.
type scored struct {
	s     Suggestion
	score int
}

// Ranker merges history, catalog, and ticker candidates into a unified
// suggestion list. It is pure given its inputs apart from reading the
// static function catalog.
type Ranker struct {
	history *History
	cache   *InstrumentCache
}

// NewRanker creates a Ranker over the given history and instrument cache.
func NewRanker(history *History, cache *InstrumentCache) *Ranker {
	return &Ranker{history: history, cache: cache}
}

// Suggest returns the suggestion list for the current input. live carries
// the most recent remote search results (may be nil). In reverse mode only
// history is searched, capped at 20; otherwise all sources merge, capped
// at 12.
func (r *Ranker) Suggest(query string, live []Instrument, reverse bool) []Suggestion {
	query = strings.TrimSpace(query)
	if reverse {
		return r.reverseHistory(query)
	}

	var candidates []scored
	candidates = append(candidates, r.historyCandidates(query)...)
	candidates = append(candidates, functionCandidates(query)...)
	candidates = append(candidates, r.tickerCandidates(query, live)...)

	sortByScore(candidates)
	return strip(candidates, maxSuggestions)
}

// reverseHistory implements the dedicated reverse-history-search mode.
func (r *Ranker) reverseHistory(query string) []Suggestion {
	entries := r.history.Entries()
	if query == "" {
		out := make([]Suggestion, 0, maxReverseSuggestions)
		for _, entry := range entries {
			if len(out) == maxReverseSuggestions {
				break
			}
			out = append(out, recentSuggestion(entry))
		}
		return out
	}

	var matched []scored
	for _, entry := range entries {
		if sc := command.Score(entry, query); sc != command.NoMatch {
			matched = append(matched, scored{s: recentSuggestion(entry), score: sc})
		}
	}
	sortByScore(matched)
	return strip(matched, maxReverseSuggestions)
}

func (r *Ranker) historyCandidates(query string) []scored {
	entries := r.history.Entries()
	if query == "" {
		out := make([]scored, 0, maxHistoryRecent)
		for i, entry := range entries {
			if len(out) == maxHistoryRecent {
				break
			}
			out = append(out, scored{s: recentSuggestion(entry), score: recentHistoryBase - i})
		}
		return out
	}

	var matched []scored
	for _, entry := range entries {
		if sc := command.Score(entry, query); sc != command.NoMatch {
			matched = append(matched, scored{s: recentSuggestion(entry), score: sc})
		}
	}
	sortByScore(matched)
	if len(matched) > maxHistoryMatched {
		matched = matched[:maxHistoryMatched]
	}
	return matched
}

func functionCandidates(query string) []scored {
	if query == "" {
		out := make([]scored, 0, maxFunctionRecent)
		for i, spec := range command.Catalog {
			if len(out) == maxFunctionRecent {
				break
			}
			out = append(out, scored{s: functionSuggestion(spec), score: recentFunctionBase - i})
		}
		return out
	}

	var matched []scored
	for _, spec := range command.Catalog {
		best := command.Score(spec.Code, query)
		if sc := command.Score(spec.Label, query); sc > best {
			best = sc
		}
		if sc := command.Score(spec.Description, query); sc > best {
			best = sc
		}
		for _, alias := range spec.Aliases {
			if sc := command.Score(alias, query); sc > best {
				best = sc
			}
		}
		if best == command.NoMatch {
			continue
		}
		matched = append(matched, scored{s: functionSuggestion(spec), score: best * functionWeight})
	}
	sortByScore(matched)
	if len(matched) > maxFunctionMatched {
		matched = matched[:maxFunctionMatched]
	}
	return matched
}

func (r *Ranker) tickerCandidates(query string, live []Instrument) []scored {
	if query == "" {
		cached := r.cache.Entries()
		out := make([]scored, 0, maxTickerRecent)
		for i, inst := range cached {
			if len(out) == maxTickerRecent {
				break
			}
			out = append(out, scored{s: tickerSuggestion(inst), score: recentTickerBase - i})
		}
		return out
	}

	// Remote results merge before cache entries so fresher data wins the
	// dedup, then the pool is capped before matching.
	pool := MergeInstruments(live, r.cache.Entries())
	if len(pool) > maxTickerPool {
		pool = pool[:maxTickerPool]
	}

	var matched []scored
	for _, inst := range pool {
		best := command.NoMatch
		if sc := command.Score(inst.Symbol, query); sc != command.NoMatch {
			best = sc * tickerSymbolWeight
		}
		if sc := command.Score(inst.Name, query); sc > best {
			best = sc
		}
		if sc := command.Score(inst.Exchange, query); sc > best {
			best = sc
		}
		if best == command.NoMatch {
			continue
		}
		matched = append(matched, scored{s: tickerSuggestion(inst), score: best})
	}
	sortByScore(matched)
	if len(matched) > maxTickerMatched {
		matched = matched[:maxTickerMatched]
	}
	return matched
}

func recentSuggestion(entry string) Suggestion {
	return Suggestion{
		Kind:     SuggestionRecent,
		Key:      "recent:" + entry,
		Title:    entry,
		Subtitle: "Recent command",
		Command:  entry,
	}
}

func functionSuggestion(spec command.FunctionSpec) Suggestion {
	return Suggestion{
		Kind:     SuggestionFunction,
		Key:      "fn:" + spec.Code,
		Title:    spec.Code,
		Subtitle: spec.Label + " · " + spec.Description,
		Command:  spec.Code,
	}
}

func tickerSuggestion(inst Instrument) Suggestion {
	subtitle := inst.Name
	if inst.Exchange != "" {
		if subtitle != "" {
			subtitle += " · "
		}
		subtitle += inst.Exchange
	}
	return Suggestion{
		Kind:     SuggestionTicker,
		Key:      "ticker:" + inst.dedupKey(),
		Title:    inst.Symbol,
		Subtitle: subtitle,
		Command:  inst.Symbol,
		Price:    inst.Price,
	}
}

// sortByScore sorts candidates by descending score, stable so earlier
// sources keep their relative order on ties.
func sortByScore(candidates []scored) {
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
}

func strip(candidates []scored, limit int) []Suggestion {
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.s)
	}
	return out
}
