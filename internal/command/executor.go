package command

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"marketterm/internal/session"
)

// Navigator is the injected capability to change the current view. Any
// routing mechanism satisfies it.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string)

// Navigate calls f(target).
func (f NavigatorFunc) Navigate(target string) { f(target) }

// Result reports the outcome of one execution attempt.
type Result struct {
	OK      bool
	Target  string // route navigated to, on success
	Message string // human-readable failure reason
}

// Compare fallbacks when the split-compare function is invoked without
// usable symbols.
const (
	compareFallbackLeft = "SPY"
	compareDefaultRight = "QQQ"
	defaultSeriesCode   = "SPX"
	defaultDetailTab    = "overview"
)

// tabByFunction maps security-scoped function codes to tabs on the
// security detail view. Unmapped codes fall back to the overview tab.
var tabByFunction = map[string]string{
	CodeOverview:   "overview",
	CodeChart:      "chart",
	CodeFinancials: "financials",
	CodeNews:       "news",
	CodeEstimates:  "estimates",
	CodePeers:      "peers",
	CodeOwnership:  "ownership",
}

// Executor interprets parsed commands against the session store and
// produces navigation side effects. A successful ticker-bearing command
// mutates the active ticker exactly once and navigates exactly once;
// failures never navigate.
type Executor struct {
	session *session.Store
	log     *slog.Logger
}

// NewExecutor creates an Executor bound to the given session store.
func NewExecutor(sess *session.Store, log *slog.Logger) *Executor {
	return &Executor{session: sess, log: log}
}

// Execute runs one parsed command. nav receives exactly one call on
// success and none on failure.
func (e *Executor) Execute(cmd ParsedCommand, nav Navigator) Result {
	switch cmd.Kind {
	case KindNaturalLanguage:
		return e.executeQuery(cmd, nav)
	case KindTicker:
		return e.navigateTo(nav, securityRoute(e.setTicker(cmd.Ticker), defaultDetailTab, nil))
	case KindTickerFunction:
		return e.executeSecurityFunction(cmd.Func, cmd.Ticker, cmd.Modifiers, nav)
	case KindFunction:
		return e.executeFunction(cmd, nav)
	}
	return Result{OK: false, Message: fmt.Sprintf("unknown command kind %q", cmd.Kind)}
}

func (e *Executor) executeQuery(cmd ParsedCommand, nav Navigator) Result {
	if strings.TrimSpace(cmd.Query) == "" {
		return Result{OK: false, Message: "nothing to search for"}
	}
	return e.navigateTo(nav, "/search?q="+url.QueryEscape(cmd.Query))
}

// executeSecurityFunction handles a function applied to a ticker, for both
// the ticker-function variant and scoped function invocations.
func (e *Executor) executeSecurityFunction(code, ticker string, modifiers []string, nav Navigator) Result {
	ticker = e.setTicker(ticker)

	// Options commands land on the derivatives view, not a detail tab.
	if code == CodeOptions {
		return e.navigateTo(nav, "/derivatives/"+ticker)
	}

	tab, ok := tabByFunction[code]
	if !ok {
		tab = defaultDetailTab
	}

	// Remaining modifiers become comparison overlays; only the chart tab
	// supports them.
	var compare []string
	if tab == "chart" {
		compare = modifiers
	}
	return e.navigateTo(nav, securityRoute(ticker, tab, compare))
}

func (e *Executor) executeFunction(cmd ParsedCommand, nav Navigator) Result {
	mods := cmd.Modifiers
	first := ""
	if len(mods) > 0 {
		first = mods[0]
	}

	switch cmd.Func {
	case CodeCompare:
		return e.executeCompare(mods, nav)
	case CodeScreener:
		if first != "" {
			return e.navigateTo(nav, "/screener?preset="+url.QueryEscape(first))
		}
		return e.navigateTo(nav, "/screener")
	case CodePortfolio:
		return e.navigateTo(nav, "/portfolio")
	case CodeWatchlist:
		if first != "" {
			return e.navigateTo(nav, "/watchlists/"+url.PathEscape(first))
		}
		return e.navigateTo(nav, "/watchlists")
	case CodeTopStories:
		return e.navigateTo(nav, "/news")
	case CodeBacktest:
		return e.navigateTo(nav, "/backtesting")
	case CodeSettings:
		return e.navigateTo(nav, "/settings")
	case CodeOps:
		return e.navigateTo(nav, "/ops")
	case CodeLaunchpad:
		return e.navigateTo(nav, "/launchpad")
	case CodeYieldCurve:
		return e.navigateTo(nav, "/macro/yield-curve")
	case CodeEcoCalendar:
		return e.navigateTo(nav, "/macro/calendar")
	case CodeMacro:
		return e.navigateTo(nav, "/macro")
	case CodeSectorMap:
		return e.navigateTo(nav, "/macro/sectors")
	case CodeCrypto:
		return e.navigateTo(nav, "/crypto")
	case CodeSeries:
		code := defaultSeriesCode
		if first != "" {
			code = first
		}
		return e.navigateTo(nav, "/series/"+url.PathEscape(code))
	case CodeNews:
		// News is scoped only when given a ticker-shaped modifier.
		if first != "" && IsTickerShaped(first) {
			return e.executeSecurityFunction(cmd.Func, first, mods[1:], nav)
		}
		return e.navigateTo(nav, "/news")
	}

	// Security-scoped functions require a ticker-shaped modifier.
	spec, ok := FunctionByCode(cmd.Func)
	if !ok {
		return Result{OK: false, Message: fmt.Sprintf("unknown function %q", cmd.Func)}
	}
	if !spec.SecurityScoped {
		// Catalog entries without a destination above are a programming
		// error surfaced as a failed command rather than a panic.
		return Result{OK: false, Message: fmt.Sprintf("%s has no destination", spec.Code)}
	}
	if first == "" || !IsTickerShaped(first) {
		return Result{OK: false, Message: fmt.Sprintf("%s requires a ticker, e.g. \"%s AAPL\"", spec.Code, spec.Code)}
	}
	return e.executeSecurityFunction(cmd.Func, first, mods[1:], nav)
}

// executeCompare builds the split-compare route. The left symbol falls
// back to the active ticker, then a fixed default; the right symbol falls
// back to a fixed default.
func (e *Executor) executeCompare(mods []string, nav Navigator) Result {
	left := ""
	if len(mods) > 0 && IsTickerShaped(mods[0]) {
		left = strings.ToUpper(mods[0])
	}
	if left == "" {
		left = e.session.ActiveTicker()
	}
	if left == "" {
		left = compareFallbackLeft
	}

	right := compareDefaultRight
	if len(mods) > 1 && IsTickerShaped(mods[1]) {
		right = strings.ToUpper(mods[1])
	}

	return e.navigateTo(nav, "/compare?left="+url.QueryEscape(left)+"&right="+url.QueryEscape(right))
}

// setTicker mutates the session's active ticker and returns the
// uppercased symbol.
func (e *Executor) setTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	e.session.SetActiveTicker(symbol)
	return symbol
}

func (e *Executor) navigateTo(nav Navigator, target string) Result {
	if e.log != nil {
		e.log.Debug("navigate", "target", target)
	}
	nav.Navigate(target)
	return Result{OK: true, Target: target}
}

// securityRoute builds the security detail route for a ticker and tab,
// with optional chart comparison symbols.
func securityRoute(ticker, tab string, compare []string) string {
	route := "/securities/" + url.PathEscape(ticker) + "?tab=" + tab
	if len(compare) > 0 {
		route += "&compare=" + url.QueryEscape(strings.Join(compare, ","))
	}
	return route
}
