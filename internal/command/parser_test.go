package command

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseGrammarPrecedence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ParsedCommand
	}{
		{
			name: "bare ticker",
			raw:  "AAPL",
			want: ParsedCommand{Kind: KindTicker, Raw: "AAPL", Ticker: "AAPL"},
		},
		{
			name: "ticker then function",
			raw:  "AAPL GP",
			want: ParsedCommand{Kind: KindTickerFunction, Raw: "AAPL GP", Ticker: "AAPL", Func: "GP", Modifiers: []string{}},
		},
		{
			name: "function then ticker",
			raw:  "GP AAPL",
			want: ParsedCommand{Kind: KindFunction, Raw: "GP AAPL", Func: "GP", Modifiers: []string{"AAPL"}},
		},
		{
			name: "multiple tickers before trailing function",
			raw:  "AAPL MSFT COMP",
			want: ParsedCommand{Kind: KindFunction, Raw: "AAPL MSFT COMP", Func: "COMP", Modifiers: []string{"AAPL", "MSFT"}},
		},
		{
			name: "ticker function with modifiers",
			raw:  "AAPL GP MSFT GOOG",
			want: ParsedCommand{Kind: KindTickerFunction, Raw: "AAPL GP MSFT GOOG", Ticker: "AAPL", Func: "GP", Modifiers: []string{"MSFT", "GOOG"}},
		},
		{
			name: "bare function",
			raw:  "EQS",
			want: ParsedCommand{Kind: KindFunction, Raw: "EQS", Func: "EQS", Modifiers: []string{}},
		},
		{
			name: "alias resolves lowercase",
			raw:  "chart aapl",
			want: ParsedCommand{Kind: KindFunction, Raw: "chart aapl", Func: "GP", Modifiers: []string{"AAPL"}},
		},
		{
			name: "non-ticker-shaped first token",
			raw:  "what's happening?",
			want: ParsedCommand{Kind: KindNaturalLanguage, Raw: "what's happening?", Query: "what's happening?"},
		},
		{
			name: "empty input",
			raw:  "",
			want: ParsedCommand{Kind: KindNaturalLanguage, Raw: "", Query: ""},
		},
		{
			name: "whitespace only",
			raw:  "   \t ",
			want: ParsedCommand{Kind: KindNaturalLanguage, Raw: "   \t ", Query: ""},
		},
		{
			name: "ticker with extra garbage tokens ignored",
			raw:  "AAPL ???",
			want: ParsedCommand{Kind: KindTicker, Raw: "AAPL ???", Ticker: "AAPL"},
		},
		{
			name: "garbage first token falls back to query",
			raw:  "??? AAPL",
			want: ParsedCommand{Kind: KindNaturalLanguage, Raw: "??? AAPL", Query: "??? AAPL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTotalAndDeterministic(t *testing.T) {
	inputs := []string{
		"", " ", "AAPL", "aapl gp", "GP", strings.Repeat("A", 500),
		"日本語クエリ", "\x00\x01\x02", "a b c d e f g h", "....", "- - -",
		"NOTAFUNCTIONATALLBUTLONGERTHANTWENTYCHARS",
	}
	kinds := map[Kind]bool{
		KindTicker: true, KindTickerFunction: true,
		KindFunction: true, KindNaturalLanguage: true,
	}

	for _, raw := range inputs {
		first := Parse(raw)
		if !kinds[first.Kind] {
			t.Errorf("Parse(%q) produced unknown kind %q", raw, first.Kind)
		}
		for i := 0; i < 3; i++ {
			if again := Parse(raw); !reflect.DeepEqual(again, first) {
				t.Errorf("Parse(%q) is not deterministic: %+v vs %+v", raw, first, again)
			}
		}
	}
}

func TestIsTickerShaped(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"AAPL", true},
		{"brk.b", true},
		{"BTC-USD", true},
		{"A", true},
		{strings.Repeat("A", 20), true},
		{strings.Repeat("A", 21), false},
		{"", false},
		{"AAPL!", false},
		{"A B", false},
	}
	for _, tt := range tests {
		if got := IsTickerShaped(tt.tok); got != tt.want {
			t.Errorf("IsTickerShaped(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}
