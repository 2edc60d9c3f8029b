package devserver

import (
	"sort"
	"strings"
)

// Instrument is one row of the dev instrument master.
type Instrument struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Exchange string  `json:"exchange"`
	Price    float64 `json:"price,omitempty"`
}

// universe seeds the dev backend with enough breadth to exercise the
// terminal: large caps, ETFs, and a couple of awkward symbols.
var universe = []Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Price: 231.40},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", Price: 428.10},
	{Symbol: "GOOGL", Name: "Alphabet Inc. Class A", Exchange: "NASDAQ", Price: 184.25},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Exchange: "NASDAQ", Price: 196.70},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ", Price: 127.85},
	{Symbol: "META", Name: "Meta Platforms Inc.", Exchange: "NASDAQ", Price: 542.30},
	{Symbol: "TSLA", Name: "Tesla Inc.", Exchange: "NASDAQ", Price: 248.60},
	{Symbol: "AMD", Name: "Advanced Micro Devices", Exchange: "NASDAQ", Price: 158.45},
	{Symbol: "INTC", Name: "Intel Corporation", Exchange: "NASDAQ", Price: 22.15},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Exchange: "NYSE", Price: 212.90},
	{Symbol: "GS", Name: "Goldman Sachs Group", Exchange: "NYSE", Price: 492.75},
	{Symbol: "BAC", Name: "Bank of America Corp.", Exchange: "NYSE", Price: 41.30},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", Exchange: "NYSE", Price: 117.55},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway Class B", Exchange: "NYSE", Price: 462.20},
	{Symbol: "UNH", Name: "UnitedHealth Group", Exchange: "NYSE", Price: 588.10},
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Exchange: "NYSEARCA", Price: 556.30},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Exchange: "NASDAQ", Price: 478.90},
	{Symbol: "IWM", Name: "iShares Russell 2000 ETF", Exchange: "NYSEARCA", Price: 218.40},
	{Symbol: "GLD", Name: "SPDR Gold Shares", Exchange: "NYSEARCA", Price: 228.75},
	{Symbol: "TLT", Name: "iShares 20+ Year Treasury Bond ETF", Exchange: "NASDAQ", Price: 93.60},
}

// Ranking tiers, best first: exact symbol, symbol prefix, symbol substring,
// name substring.
const (
	rankExact = iota
	rankSymbolPrefix
	rankSymbolSubstring
	rankNameSubstring
)

// searchInstruments ranks the universe against query. An empty query
// returns nothing. Ties within a tier keep universe order (roughly by
// liquidity).
func searchInstruments(query string, limit int) []Instrument {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return []Instrument{}
	}

	type ranked struct {
		inst Instrument
		rank int
		pos  int
	}
	var matches []ranked
	for i, inst := range universe {
		rank, ok := rankInstrument(inst, q)
		if !ok {
			continue
		}
		matches = append(matches, ranked{inst: inst, rank: rank, pos: i})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].rank != matches[b].rank {
			return matches[a].rank < matches[b].rank
		}
		return matches[a].pos < matches[b].pos
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Instrument, len(matches))
	for i, m := range matches {
		out[i] = m.inst
	}
	return out
}

func rankInstrument(inst Instrument, q string) (int, bool) {
	sym := strings.ToUpper(inst.Symbol)
	switch {
	case sym == q:
		return rankExact, true
	case strings.HasPrefix(sym, q):
		return rankSymbolPrefix, true
	case strings.Contains(sym, q):
		return rankSymbolSubstring, true
	case strings.Contains(strings.ToUpper(inst.Name), q):
		return rankNameSubstring, true
	}
	return 0, false
}
