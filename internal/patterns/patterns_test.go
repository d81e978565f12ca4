package patterns

import (
	"testing"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Failed to build library: %v", err)
	}
	return lib
}

func TestMatchesAllowlist(t *testing.T) {
	lib := newTestLibrary(t)

	if !lib.MatchesAllowlist("weekly newsletter from github.com with trending repos") {
		t.Error("Expected github.com text to match allowlist")
	}
	if lib.MatchesAllowlist("urgent sponsor a child now") {
		t.Error("Expected fraud text without domains to miss allowlist")
	}
}

func TestAllowlistCoexistsWithFraudSignals(t *testing.T) {
	lib := newTestLibrary(t)

	// Both signal families can match the same text; precedence is decided
	// by the classifier tiers, not by the library.
	text := "urgent donate now via github.com"
	if !lib.MatchesAllowlist(text) {
		t.Error("Expected allowlist match")
	}
	if !lib.MatchesFraudPattern(text) {
		t.Error("Expected fraud pattern match")
	}
}

func TestMatchesFraudPattern(t *testing.T) {
	lib := newTestLibrary(t)

	matching := []string{
		"please sponsor a child today",
		"you have won a new car",
		"donate now to help the shelter",
	}
	for _, text := range matching {
		if !lib.MatchesFraudPattern(text) {
			t.Errorf("Expected fraud pattern to match %q", text)
		}
	}

	if lib.MatchesFraudPattern("let's meet for coffee tomorrow") {
		t.Error("Expected benign text not to match the fraud pattern")
	}
}

func TestMatchKeywordPairs(t *testing.T) {
	lib := newTestLibrary(t)

	kind, ok := lib.MatchKeywordPairs("urgent help needed, become a sponsor")
	if !ok || kind != KindDonationScam {
		t.Errorf("Expected donation scam pair, got kind=%q ok=%v", kind, ok)
	}

	kind, ok = lib.MatchKeywordPairs("congratulations! your prize is waiting")
	if !ok || kind != KindPromotionalSpam {
		t.Errorf("Expected promotional spam pair, got kind=%q ok=%v", kind, ok)
	}

	// One keyword of a pair alone must not fire.
	if _, ok := lib.MatchKeywordPairs("this is urgent"); ok {
		t.Error("Expected single keyword not to fire a pair")
	}
}

func TestCountSuspiciousKeywords(t *testing.T) {
	lib := newTestLibrary(t)

	if n := lib.CountSuspiciousKeywords("please donate to our charity fund"); n != 3 {
		t.Errorf("Expected 3 suspicious keywords, got %d", n)
	}
	if n := lib.CountSuspiciousKeywords("see you at lunch"); n != 0 {
		t.Errorf("Expected 0 suspicious keywords, got %d", n)
	}
}

func TestPartialConfigFallsBackToDefaults(t *testing.T) {
	lib, err := NewLibrary(Config{AllowlistDomains: []string{"example.org"}}, nil)
	if err != nil {
		t.Fatalf("Failed to build library: %v", err)
	}

	if !lib.MatchesAllowlist("news from example.org") {
		t.Error("Expected custom allowlist entry to match")
	}
	if lib.MatchesAllowlist("news from github.com") {
		t.Error("Expected default allowlist to be replaced")
	}
	// Fraud fragments were not overridden, defaults apply.
	if !lib.MatchesFraudPattern("donate now") {
		t.Error("Expected default fraud fragments to remain active")
	}
}
