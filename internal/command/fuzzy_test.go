package command

import "testing"

func TestScoreOrdering(t *testing.T) {
	needle := "AAPL"

	exact := Score("AAPL", needle)
	prefix := Score("AAPLX", needle)
	substring := Score("XAAPL", needle)
	subsequence := Score("AXAXPXL", needle)

	if exact != 1000 {
		t.Errorf("exact match = %d, want 1000", exact)
	}
	if !(exact > prefix) {
		t.Errorf("exact (%d) should outrank prefix (%d)", exact, prefix)
	}
	if !(prefix > substring) {
		t.Errorf("prefix (%d) should outrank substring (%d)", prefix, substring)
	}
	if !(substring > subsequence) {
		t.Errorf("substring (%d) should outrank subsequence (%d)", substring, subsequence)
	}
	if subsequence <= 0 {
		t.Errorf("subsequence match = %d, want > 0", subsequence)
	}
}

func TestScoreNoMatch(t *testing.T) {
	if got := Score("MSFT", "AAPL"); got != NoMatch {
		t.Errorf("Score(MSFT, AAPL) = %d, want NoMatch", got)
	}
	if got := Score("", "A"); got != NoMatch {
		t.Errorf("Score(empty, A) = %d, want NoMatch", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	if a, b := Score("aapl", "AAPL"), Score("AAPL", "aapl"); a != 1000 || b != 1000 {
		t.Errorf("case-insensitive exact match scores = %d, %d, want 1000, 1000", a, b)
	}
}

func TestScorePrefixPenalisedByLength(t *testing.T) {
	short := Score("APPLE", "APP")
	long := Score("APPLESAUCE", "APP")
	if !(short > long) {
		t.Errorf("shorter prefix haystack (%d) should outrank longer (%d)", short, long)
	}
}

func TestScoreSubstringPenalisedByIndex(t *testing.T) {
	early := Score("XGP", "GP")
	late := Score("XXXXGP", "GP")
	if !(early > late) {
		t.Errorf("earlier substring (%d) should outrank later (%d)", early, late)
	}
}

func TestScoreContiguousSubsequenceOutranksGapped(t *testing.T) {
	// Both are subsequence matches; "GRO" appears contiguously in the first.
	contiguous := Score("GROXW", "GROW")
	gapped := Score("GXRXOXW", "GROW")
	if contiguous == NoMatch || gapped == NoMatch {
		t.Fatalf("expected both to match, got %d and %d", contiguous, gapped)
	}
	if !(contiguous > gapped) {
		t.Errorf("contiguous subsequence (%d) should outrank gapped (%d)", contiguous, gapped)
	}
}
