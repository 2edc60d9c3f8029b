package command

import (
	"regexp"
	"strings"
)

// Kind tags the variant of a parsed command.
type Kind string

const (
	KindTicker          Kind = "ticker"
	KindTickerFunction  Kind = "ticker-function"
	KindFunction        Kind = "function"
	KindNaturalLanguage Kind = "natural-language"
)

// ParsedCommand is the result of parsing one raw input string. Exactly one
// variant applies, indicated by Kind; the remaining fields are populated
// per variant.
type ParsedCommand struct {
	Kind Kind
	Raw  string

	Ticker    string   // ticker, ticker-function
	Func      string   // canonical code; ticker-function, function
	Modifiers []string // ticker-function, function; order preserved
	Query     string   // natural-language
}

// tickerTokenRe is the ticker-shaped token pattern, applied after
// uppercasing.
var tickerTokenRe = regexp.MustCompile(`^[A-Z0-9.-]{1,20}$`)

// IsTickerShaped reports whether tok (any case) looks like an instrument
// symbol.
func IsTickerShaped(tok string) bool {
	return tickerTokenRe.MatchString(strings.ToUpper(tok))
}

// Parse turns a raw input string into exactly one ParsedCommand. It is
// total: every input, including empty or garbage strings, yields a
// variant, with natural-language as the universal fallback. Function-first
// and function-last forms are tried before the bare-ticker fallback so
// that "GP AAPL" and "AAPL GP" both resolve to their function form.
func Parse(raw string) ParsedCommand {
	tokens := tokenize(raw)
	query := strings.TrimSpace(raw)

	// Rule 1: nothing typed.
	if len(tokens) == 0 {
		return ParsedCommand{Kind: KindNaturalLanguage, Raw: raw, Query: ""}
	}

	// Rule 2: single token.
	if len(tokens) == 1 {
		tok := tokens[0]
		if code, ok := ResolveFunction(tok); ok {
			return ParsedCommand{Kind: KindFunction, Raw: raw, Func: code, Modifiers: []string{}}
		}
		if tickerTokenRe.MatchString(tok) {
			return ParsedCommand{Kind: KindTicker, Raw: raw, Ticker: tok}
		}
		return ParsedCommand{Kind: KindNaturalLanguage, Raw: raw, Query: query}
	}

	// Rule 3: function-first.
	if code, ok := ResolveFunction(tokens[0]); ok {
		return ParsedCommand{Kind: KindFunction, Raw: raw, Func: code, Modifiers: tokens[1:]}
	}

	// Rule 4: function-last with ticker-shaped tokens before it.
	last := tokens[len(tokens)-1]
	if code, ok := ResolveFunction(last); ok {
		leading := tokens[:len(tokens)-1]
		allTickers := true
		for _, tok := range leading {
			if !tickerTokenRe.MatchString(tok) {
				allTickers = false
				break
			}
		}
		if allTickers {
			if len(leading) > 1 {
				// Multi-symbol form: all leading tickers become modifiers.
				return ParsedCommand{Kind: KindFunction, Raw: raw, Func: code, Modifiers: leading}
			}
			return ParsedCommand{Kind: KindTickerFunction, Raw: raw, Ticker: leading[0], Func: code, Modifiers: []string{}}
		}
	}

	// Rule 5: ticker then function, trailing tokens become modifiers.
	if tickerTokenRe.MatchString(tokens[0]) {
		if code, ok := ResolveFunction(tokens[1]); ok {
			return ParsedCommand{Kind: KindTickerFunction, Raw: raw, Ticker: tokens[0], Func: code, Modifiers: tokens[2:]}
		}
	}

	// Rule 6: bare ticker; extra tokens are ignored at this stage.
	if tickerTokenRe.MatchString(tokens[0]) {
		return ParsedCommand{Kind: KindTicker, Raw: raw, Ticker: tokens[0]}
	}

	// Rule 7: fallback.
	return ParsedCommand{Kind: KindNaturalLanguage, Raw: raw, Query: query}
}

// tokenize splits raw on whitespace runs, uppercases each token, and drops
// empties.
func tokenize(raw string) []string {
	fields := strings.Fields(raw)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToUpper(f))
	}
	return tokens
}
