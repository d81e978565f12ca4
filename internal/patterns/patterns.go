package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Pair kinds reported by MatchKeywordPairs.
const (
	KindDonationScam    = "donation scam"
	KindPromotionalSpam = "promotional spam"
)

// Config holds the matcher lists. All lists are empirically tuned
// heuristics and are treated as replaceable configuration.
type Config struct {
	// AllowlistDomains are substrings identifying known-legitimate sources.
	AllowlistDomains []string

	// FraudFragments are regex fragments joined into a single alternation.
	FraudFragments []string

	// DonationPairs and SpamPairs are keyword conjunctions; a list fires
	// when every keyword of at least one pair is present.
	DonationPairs [][]string
	SpamPairs     [][]string

	// SuspiciousKeywords feed the model consistency override.
	SuspiciousKeywords []string
}

// DefaultConfig returns the built-in heuristic lists.
func DefaultConfig() Config {
	return Config{
		AllowlistDomains: []string{
			"github.com",
			"google.com",
			"microsoft.com",
			"amazon.com",
			"apple.com",
			"paypal.com",
			"linkedin.com",
			"netflix.com",
			"facebook.com",
			"stackoverflow.com",
		},
		FraudFragments: []string{
			"sponsor a child",
			"save a life",
			"donate now",
			"urgent appeal",
			"last chance to help",
			"claim your prize",
			"you have won",
			"congratulations.{0,20}winner",
			"act fast before",
			"offer expires",
			"wire transfer immediately",
		},
		DonationPairs: [][]string{
			{"urgent", "sponsor"},
			{"shelter", "gone"},
			{"donate", "children"},
			{"charity", "bank"},
			{"orphan", "fund"},
		},
		SpamPairs: [][]string{
			{"exclusive deal", "act fast"},
			{"congratulations", "prize"},
			{"limited time", "offer"},
			{"winner", "claim"},
			{"free gift", "click"},
		},
		SuspiciousKeywords: []string{
			"urgent",
			"sponsor",
			"donate",
			"charity",
			"fund",
			"prize",
			"winner",
			"claim",
			"verify",
			"bank",
		},
	}
}

// Library is the set of precompiled textual matchers consulted by the
// fast-path tiers. Pure functions over lowercased text, no state.
type Library struct {
	allowlist     []string
	fraudPattern  *regexp.Regexp
	donationPairs [][]string
	spamPairs     [][]string
	suspicious    []string
}

// NewLibrary compiles the matchers from the given config. Empty lists fall
// back to the built-in defaults so a partial config override stays usable.
func NewLibrary(cfg Config, logger *zap.Logger) (*Library, error) {
	def := DefaultConfig()
	if len(cfg.AllowlistDomains) == 0 {
		cfg.AllowlistDomains = def.AllowlistDomains
	}
	if len(cfg.FraudFragments) == 0 {
		cfg.FraudFragments = def.FraudFragments
	}
	if len(cfg.DonationPairs) == 0 {
		cfg.DonationPairs = def.DonationPairs
	}
	if len(cfg.SpamPairs) == 0 {
		cfg.SpamPairs = def.SpamPairs
	}
	if len(cfg.SuspiciousKeywords) == 0 {
		cfg.SuspiciousKeywords = def.SuspiciousKeywords
	}

	fraudPattern, err := regexp.Compile(strings.Join(cfg.FraudFragments, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile fraud pattern: %w", err)
	}

	allowlist := make([]string, len(cfg.AllowlistDomains))
	for i, domain := range cfg.AllowlistDomains {
		allowlist[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if logger != nil {
		logger.Info("Initialized pattern library",
			zap.Int("allowlist_domains", len(allowlist)),
			zap.Int("fraud_fragments", len(cfg.FraudFragments)),
			zap.Int("donation_pairs", len(cfg.DonationPairs)),
			zap.Int("spam_pairs", len(cfg.SpamPairs)))
	}

	return &Library{
		allowlist:     allowlist,
		fraudPattern:  fraudPattern,
		donationPairs: lowerPairs(cfg.DonationPairs),
		spamPairs:     lowerPairs(cfg.SpamPairs),
		suspicious:    lowerAll(cfg.SuspiciousKeywords),
	}, nil
}

func lowerPairs(pairs [][]string) [][]string {
	out := make([][]string, len(pairs))
	for i, pair := range pairs {
		out[i] = lowerAll(pair)
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(strings.TrimSpace(w))
	}
	return out
}

// MatchesAllowlist reports whether text mentions a known-legitimate domain.
// The allowlist is an unconditional override of every fraud signal.
func (l *Library) MatchesAllowlist(text string) bool {
	for _, domain := range l.allowlist {
		if strings.Contains(text, domain) {
			return true
		}
	}
	return false
}

// MatchesFraudPattern reports whether the fraud alternation regex matches.
func (l *Library) MatchesFraudPattern(text string) bool {
	return l.fraudPattern.MatchString(text)
}

// MatchKeywordPairs evaluates the keyword-pair lists: conjunction within a
// pair, disjunction across pairs. Returns the kind of the list that fired.
func (l *Library) MatchKeywordPairs(text string) (string, bool) {
	if anyPairMatches(text, l.donationPairs) {
		return KindDonationScam, true
	}
	if anyPairMatches(text, l.spamPairs) {
		return KindPromotionalSpam, true
	}
	return "", false
}

func anyPairMatches(text string, pairs [][]string) bool {
	for _, pair := range pairs {
		if len(pair) == 0 {
			continue
		}
		all := true
		for _, keyword := range pair {
			if !strings.Contains(text, keyword) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// CountSuspiciousKeywords counts how many distinct suspicious keywords
// occur in the text.
func (l *Library) CountSuspiciousKeywords(text string) int {
	count := 0
	for _, keyword := range l.suspicious {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}
