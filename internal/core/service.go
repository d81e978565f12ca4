package core

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/shieldbox/shieldbox/internal/patterns"
	"go.uber.org/zap"
)

const (
	reasonTooShort      = "too short to analyze"
	reasonLegitimate    = "legitimate source"
	reasonScamPatterns  = "scam patterns detected"
	reasonModel         = "model classification"
	maxModelErrorLength = 120
)

// ScanService is the tiered classifier: cache lookup, trivial-length rule,
// allowlist rule, pattern rule, keyword-pair rule, external-model fallback
// with a consistency override. It never fails: any model error degrades to
// a safe verdict (fail-open).
type ScanService struct {
	predictor           Predictor
	cache               VerdictCache
	library             *patterns.Library
	logger              *zap.Logger
	cacheEnabled        bool
	minLength           int
	prefixBytes         int
	buckets             uint32
	suspiciousThreshold int
	modelTimeout        time.Duration
}

// ScanServiceParams bundles the tuning knobs for NewScanService.
type ScanServiceParams struct {
	// CacheEnabled toggles the fingerprint memoization tier.
	CacheEnabled bool

	// MinLength is the trivial-length cutoff on trimmed text.
	MinLength int

	// PrefixBytes is how much of the text feeds the fingerprint.
	PrefixBytes int

	// Buckets is the fingerprint table size; collisions are served as hits.
	Buckets uint32

	// SuspiciousThreshold is the keyword count that overrides a safe
	// model verdict.
	SuspiciousThreshold int

	// ModelTimeout bounds the external predictor call.
	ModelTimeout time.Duration
}

// NewScanService creates the tiered classifier service.
func NewScanService(
	predictor Predictor,
	cache VerdictCache,
	library *patterns.Library,
	logger *zap.Logger,
	params ScanServiceParams,
) *ScanService {
	if params.MinLength <= 0 {
		params.MinLength = 10
	}
	if params.PrefixBytes <= 0 {
		params.PrefixBytes = 300
	}
	if params.Buckets == 0 {
		params.Buckets = 100000
	}
	if params.SuspiciousThreshold <= 0 {
		params.SuspiciousThreshold = 2
	}
	if params.ModelTimeout <= 0 {
		params.ModelTimeout = 10 * time.Second
	}

	return &ScanService{
		predictor:           predictor,
		cache:               cache,
		library:             library,
		logger:              logger,
		cacheEnabled:        params.CacheEnabled,
		minLength:           params.MinLength,
		prefixBytes:         params.PrefixBytes,
		buckets:             params.Buckets,
		suspiciousThreshold: params.SuspiciousThreshold,
		modelTimeout:        params.ModelTimeout,
	}
}

// Scan classifies a front-end request.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) Verdict {
	return s.Classify(ctx, req.Text)
}

// Classify runs text through the tiers in strict order, short-circuiting
// on the first decisive match. Identical text yields an identical verdict.
func (s *ScanService) Classify(ctx context.Context, text string) Verdict {
	text = strings.ToLower(text)
	bucket := s.Fingerprint(text)

	if s.cacheEnabled {
		if verdict, err := s.cache.Get(ctx, bucket); err == nil {
			return *verdict
		}
	}

	if len(strings.TrimSpace(text)) < s.minLength {
		return s.memoize(ctx, bucket, Verdict{Label: LabelSafe, Reason: reasonTooShort})
	}

	// The allowlist strictly dominates every fraud signal below.
	if s.library.MatchesAllowlist(text) {
		return s.memoize(ctx, bucket, Verdict{Label: LabelSafe, Reason: reasonLegitimate})
	}

	if s.library.MatchesFraudPattern(text) {
		return s.memoize(ctx, bucket, Verdict{Label: LabelFraudulent, Reason: reasonScamPatterns})
	}

	if kind, ok := s.library.MatchKeywordPairs(text); ok {
		return s.memoize(ctx, bucket, Verdict{Label: LabelFraudulent, Reason: kind + " patterns detected"})
	}

	return s.memoize(ctx, bucket, s.classifyWithModel(ctx, text))
}

// classifyWithModel runs the external predictor and applies the
// consistency override to safe-looking raw labels.
func (s *ScanService) classifyWithModel(ctx context.Context, text string) Verdict {
	ctx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	label, err := s.predictor.Predict(ctx, text)
	if err != nil {
		s.logger.Warn("Model prediction failed, failing open", zap.Error(err))
		return Verdict{Label: LabelSafe, Reason: "model error: " + truncate(err.Error(), maxModelErrorLength)}
	}

	if label == LabelSafe || label == "legitimate" {
		if count := s.library.CountSuspiciousKeywords(text); count >= s.suspiciousThreshold {
			return Verdict{
				Label:  LabelFraudulent,
				Reason: fmt.Sprintf("model override - %d suspicious keywords detected", count),
			}
		}
		return Verdict{Label: LabelSafe, Reason: reasonModel}
	}

	return Verdict{Label: label, Reason: reasonModel}
}

// memoize inserts the verdict into the cache before returning it.
// Best-effort: admission failures never affect the verdict.
func (s *ScanService) memoize(ctx context.Context, bucket uint32, verdict Verdict) Verdict {
	if s.cacheEnabled {
		if err := s.cache.Set(ctx, bucket, &verdict); err != nil {
			s.logger.Debug("Failed to memoize verdict", zap.Error(err), zap.Uint32("bucket", bucket))
		}
	}
	return verdict
}

// Fingerprint hashes the text prefix into a cache bucket. Distinct texts
// sharing a bucket are indistinguishable to the cache.
func (s *ScanService) Fingerprint(text string) uint32 {
	if len(text) > s.prefixBytes {
		text = text[:s.prefixBytes]
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	return h.Sum32() % s.buckets
}

func truncate(message string, max int) string {
	if len(message) <= max {
		return message
	}
	return message[:max]
}
