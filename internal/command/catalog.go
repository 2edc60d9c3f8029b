// Package command implements the GO bar command engine: fuzzy matching,
// the function catalog, the command grammar, and the executor that turns a
// parsed command into a navigation target or session mutation.
package command

import (
	"fmt"
	"strings"
)

// FunctionSpec describes one entry in the static function catalog.
type FunctionSpec struct {
	Code           string   // canonical uppercase code, e.g. "GP"
	Label          string   // short human label
	Description    string   // one-line description for suggestions
	Aliases        []string // alternate uppercase codes
	SecurityScoped bool     // requires an instrument context to operate
}

// Function codes.
const (
	CodeOverview    = "DES"
	CodeChart       = "GP"
	CodeFinancials  = "FA"
	CodeNews        = "N"
	CodeOptions     = "OMON"
	CodeEstimates   = "EE"
	CodePeers       = "RV"
	CodeOwnership   = "HDS"
	CodeScreener    = "EQS"
	CodePortfolio   = "PORT"
	CodeWatchlist   = "WL"
	CodeTopStories  = "TOP"
	CodeBacktest    = "BT"
	CodeSettings    = "SET"
	CodeOps         = "OPS"
	CodeLaunchpad   = "LP"
	CodeCompare     = "COMP"
	CodeYieldCurve  = "YC"
	CodeEcoCalendar = "ECO"
	CodeMacro       = "MAC"
	CodeSeries      = "XS"
	CodeSectorMap   = "SRM"
	CodeCrypto      = "CW"
)

// Catalog is the ordered registry of known command functions. Declaration
// order is the presentation order for empty-query suggestions.
var Catalog = []FunctionSpec{
	{Code: CodeOverview, Label: "Security Overview", Description: "Company profile, key stats and quote", SecurityScoped: true},
	{Code: CodeChart, Label: "Chart", Description: "Price chart with overlays and comparisons", Aliases: []string{"CHART"}, SecurityScoped: true},
	{Code: CodeFinancials, Label: "Financials", Description: "Income statement, balance sheet, cash flow", SecurityScoped: true},
	{Code: CodeNews, Label: "News", Description: "News for a ticker, or top stories", Aliases: []string{"NEWS"}},
	{Code: CodeOptions, Label: "Options Chain", Description: "Option chain and derivatives monitor", Aliases: []string{"OPT"}, SecurityScoped: true},
	{Code: CodeEstimates, Label: "Estimates", Description: "Analyst estimates and earnings history", Aliases: []string{"EST"}, SecurityScoped: true},
	{Code: CodePeers, Label: "Peers", Description: "Relative value against peer group", Aliases: []string{"PEERS"}, SecurityScoped: true},
	{Code: CodeOwnership, Label: "Ownership", Description: "Holders and insider transactions", Aliases: []string{"OWN"}, SecurityScoped: true},
	{Code: CodeScreener, Label: "Screener", Description: "Equity screener", Aliases: []string{"SCR"}},
	{Code: CodePortfolio, Label: "Portfolio", Description: "Positions, P&L and risk", Aliases: []string{"PRT"}},
	{Code: CodeWatchlist, Label: "Watchlist", Description: "Open a watchlist by name", Aliases: []string{"WATCH"}},
	{Code: CodeTopStories, Label: "Top Stories", Description: "Market-wide top stories"},
	{Code: CodeBacktest, Label: "Backtesting", Description: "Strategy backtesting workbench"},
	{Code: CodeSettings, Label: "Settings", Description: "Terminal settings", Aliases: []string{"SETTINGS"}},
	{Code: CodeOps, Label: "Operations", Description: "Order operations and blotter"},
	{Code: CodeLaunchpad, Label: "Launchpad", Description: "Multi-panel workspace", Aliases: []string{"PAD"}},
	{Code: CodeCompare, Label: "Split Compare", Description: "Side-by-side comparison of two securities", Aliases: []string{"SPLIT"}},
	{Code: CodeYieldCurve, Label: "Yield Curve", Description: "Treasury yield curve"},
	{Code: CodeEcoCalendar, Label: "Economic Calendar", Description: "Upcoming economic releases", Aliases: []string{"CAL"}},
	{Code: CodeMacro, Label: "Macro Dashboard", Description: "Macro indicators dashboard", Aliases: []string{"MACRO"}},
	{Code: CodeSeries, Label: "External Series", Description: "Chart an external data series", Aliases: []string{"SERIES"}},
	{Code: CodeSectorMap, Label: "Sector Rotation", Description: "Sector rotation map"},
	{Code: CodeCrypto, Label: "Crypto Workspace", Description: "Crypto market workspace", Aliases: []string{"CRYPTO"}},
}

// functionLookup maps every code and alias (uppercased) to its canonical
// code. Built once at init; a key collision is a programming error.
var functionLookup = buildFunctionLookup(Catalog)

func buildFunctionLookup(specs []FunctionSpec) map[string]string {
	lookup := make(map[string]string, len(specs)*2)
	add := func(key, code string) {
		key = strings.ToUpper(key)
		if existing, ok := lookup[key]; ok {
			panic(fmt.Sprintf("command: catalog key %q maps to both %s and %s", key, existing, code))
		}
		lookup[key] = code
	}
	for _, spec := range specs {
		add(spec.Code, spec.Code)
		for _, alias := range spec.Aliases {
			add(alias, spec.Code)
		}
	}
	return lookup
}

// ResolveFunction maps a token (any case) to its canonical function code.
func ResolveFunction(token string) (string, bool) {
	code, ok := functionLookup[strings.ToUpper(token)]
	return code, ok
}

// FunctionByCode returns the catalog entry for a canonical code.
func FunctionByCode(code string) (FunctionSpec, bool) {
	for _, spec := range Catalog {
		if spec.Code == code {
			return spec, true
		}
	}
	return FunctionSpec{}, false
}
