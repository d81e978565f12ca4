package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shieldbox/shieldbox/internal/patterns"
	"go.uber.org/zap"
)

type fakePredictor struct {
	mu    sync.Mutex
	label Label
	err   error
	calls int
}

func (f *fakePredictor) Predict(ctx context.Context, text string) (Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.label, f.err
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[uint32]Verdict
}

var errCacheMiss = errors.New("cache miss")

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uint32]Verdict)}
}

func (c *fakeCache) Get(ctx context.Context, bucket uint32) (*Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if verdict, ok := c.entries[bucket]; ok {
		return &verdict, nil
	}
	return nil, errCacheMiss
}

func (c *fakeCache) Set(ctx context.Context, bucket uint32, verdict *Verdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[bucket]; !ok {
		c.entries[bucket] = *verdict
	}
	return nil
}

func newTestService(t *testing.T, predictor Predictor, cacheEnabled bool) *ScanService {
	t.Helper()
	library, err := patterns.NewLibrary(patterns.DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build pattern library: %v", err)
	}
	return NewScanService(predictor, newFakeCache(), library, zap.NewNop(), ScanServiceParams{
		CacheEnabled: cacheEnabled,
	})
}

func TestClassifyShortTextIsSafe(t *testing.T) {
	predictor := &fakePredictor{label: LabelPhishing}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "hi")

	if verdict.Label != LabelSafe {
		t.Errorf("expected safe, got %s", verdict.Label)
	}
	if verdict.Reason != "too short to analyze" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 0 {
		t.Errorf("model should not run for trivial text, got %d calls", predictor.callCount())
	}
}

func TestClassifyAllowlistDominatesFraudSignals(t *testing.T) {
	predictor := &fakePredictor{label: LabelScam}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Visit GitHub.com to claim your prize today")

	if verdict.Label != LabelSafe {
		t.Errorf("expected safe for allowlisted sender, got %s", verdict.Label)
	}
	if verdict.Reason != "legitimate source" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 0 {
		t.Errorf("model should not run for allowlisted text, got %d calls", predictor.callCount())
	}
}

func TestClassifyFraudPattern(t *testing.T) {
	predictor := &fakePredictor{label: LabelSafe}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Please donate now to save a life")

	if verdict.Label != LabelFraudulent {
		t.Errorf("expected fraudulent, got %s", verdict.Label)
	}
	if verdict.Reason != "scam patterns detected" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 0 {
		t.Errorf("model should not run when patterns match, got %d calls", predictor.callCount())
	}
}

func TestClassifyDonationPairWithoutModel(t *testing.T) {
	predictor := &fakePredictor{label: LabelSafe}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Urgent need: sponsor our appeal today")

	if verdict.Label != LabelFraudulent {
		t.Errorf("expected fraudulent, got %s", verdict.Label)
	}
	if !strings.Contains(verdict.Reason, "donation scam") {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 0 {
		t.Errorf("model should not run when keyword pairs match, got %d calls", predictor.callCount())
	}
}

func TestClassifyFallsThroughToModel(t *testing.T) {
	predictor := &fakePredictor{label: LabelSafe}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Monthly newsletter with meeting notes and invoice details")

	if verdict.Label != LabelSafe {
		t.Errorf("expected safe, got %s", verdict.Label)
	}
	if verdict.Reason != "model classification" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 1 {
		t.Errorf("expected exactly one model call, got %d", predictor.callCount())
	}
}

func TestClassifyModelLabelPreserved(t *testing.T) {
	predictor := &fakePredictor{label: LabelPhishing}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Your mailbox storage quota has been exceeded recently")

	if verdict.Label != LabelPhishing {
		t.Errorf("expected phishing, got %s", verdict.Label)
	}
	if verdict.Reason != "model classification" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
}

func TestClassifyConsistencyOverride(t *testing.T) {
	predictor := &fakePredictor{label: LabelSafe}
	svc := newTestService(t, predictor, false)

	// "verify" and "bank" are both suspicious terms; the model's safe
	// verdict is overridden.
	verdict := svc.Classify(context.Background(), "Kindly verify details with the bank this week")

	if verdict.Label != LabelFraudulent {
		t.Errorf("expected fraudulent override, got %s", verdict.Label)
	}
	if verdict.Reason != "model override - 2 suspicious keywords detected" {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if predictor.callCount() != 1 {
		t.Errorf("expected one model call, got %d", predictor.callCount())
	}
}

func TestClassifyLegitimateRawLabelNormalized(t *testing.T) {
	predictor := &fakePredictor{label: Label("legitimate")}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Monthly newsletter with meeting notes and invoice details")

	if verdict.Label != LabelSafe {
		t.Errorf("expected legitimate to normalize to safe, got %s", verdict.Label)
	}
}

func TestClassifyModelErrorFailsOpen(t *testing.T) {
	predictor := &fakePredictor{err: errors.New("upstream unavailable")}
	svc := newTestService(t, predictor, false)

	verdict := svc.Classify(context.Background(), "Monthly newsletter with meeting notes and invoice details")

	if verdict.Label != LabelSafe {
		t.Errorf("expected fail-open safe verdict, got %s", verdict.Label)
	}
	if !strings.HasPrefix(verdict.Reason, "model error: ") {
		t.Errorf("unexpected reason: %q", verdict.Reason)
	}
	if !strings.Contains(verdict.Reason, "upstream unavailable") {
		t.Errorf("reason should carry the model error: %q", verdict.Reason)
	}
}

func TestClassifyMemoizesVerdicts(t *testing.T) {
	predictor := &fakePredictor{label: LabelSpam}
	svc := newTestService(t, predictor, true)

	text := "Monthly newsletter with meeting notes and invoice details"
	first := svc.Classify(context.Background(), text)
	second := svc.Classify(context.Background(), text)

	if first != second {
		t.Errorf("verdicts differ: %+v vs %+v", first, second)
	}
	if predictor.callCount() != 1 {
		t.Errorf("second scan should hit the cache, got %d model calls", predictor.callCount())
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	predictor := &fakePredictor{label: LabelSafe}
	svc := newTestService(t, predictor, true)

	first := svc.Classify(context.Background(), "PLEASE DONATE NOW TO SAVE A LIFE")
	second := svc.Classify(context.Background(), "please donate now to save a life")

	if first != second {
		t.Errorf("case variants should share a verdict: %+v vs %+v", first, second)
	}
}

func TestFingerprintUsesPrefixOnly(t *testing.T) {
	svc := newTestService(t, &fakePredictor{label: LabelSafe}, false)

	prefix := strings.Repeat("a", 300)
	if svc.Fingerprint(prefix+" tail one") != svc.Fingerprint(prefix+" tail two") {
		t.Errorf("texts sharing the first 300 bytes should share a bucket")
	}
	if svc.Fingerprint("hello world this is text") == svc.Fingerprint("completely different message") {
		t.Errorf("distinct short texts should normally land in distinct buckets")
	}
}
