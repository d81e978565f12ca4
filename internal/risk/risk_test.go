package risk

import (
	"testing"

	"github.com/shieldbox/shieldbox/internal/core"
)

func TestNormalizeDrawsInsideBand(t *testing.T) {
	n := NewNormalizer(nil)

	cases := []struct {
		label core.Label
		min   float64
		max   float64
	}{
		{core.LabelSafe, 5.0, 20.0},
		{core.LabelSpam, 50.0, 80.0},
		{core.LabelPhishing, 80.0, 100.0},
		{core.LabelScam, 80.0, 100.0},
		{core.LabelFraudulent, 80.0, 100.0},
		{core.LabelSuspicious, 80.0, 100.0},
	}

	for _, tc := range cases {
		for i := 0; i < 50; i++ {
			v := n.Normalize(tc.label, nil)
			if v < tc.min || v > tc.max {
				t.Fatalf("Label %s: draw %v outside band [%v,%v]", tc.label, v, tc.min, tc.max)
			}
		}
	}
}

func TestNormalizeIdleAndUnknownAreZero(t *testing.T) {
	n := NewNormalizer(nil)

	if v := n.Normalize(core.LabelNoMail, nil); v != 0.0 {
		t.Errorf("Expected no_mail risk 0.0, got %v", v)
	}
	if v := n.Normalize(core.Label("whatever"), nil); v != 0.0 {
		t.Errorf("Expected unknown label risk 0.0, got %v", v)
	}

	// A provided value never rescues a label without a band.
	provided := 55.0
	if v := n.Normalize(core.LabelNoMail, &provided); v != 0.0 {
		t.Errorf("Expected no_mail risk 0.0 with provided value, got %v", v)
	}
}

func TestNormalizeKeepsInBandProvidedValue(t *testing.T) {
	n := NewNormalizer(nil)

	provided := 92.345
	if v := n.Normalize(core.LabelFraudulent, &provided); v != 92.35 {
		t.Errorf("Expected rounded 92.35, got %v", v)
	}

	provided = 12.0
	if v := n.Normalize(core.LabelSafe, &provided); v != 12.0 {
		t.Errorf("Expected 12.0 kept, got %v", v)
	}
}

func TestNormalizeDiscardsOutOfBandProvidedValue(t *testing.T) {
	n := NewNormalizer(nil)

	// 12% is not a legal phishing risk; expect a fresh in-band draw.
	provided := 12.0
	for i := 0; i < 20; i++ {
		v := n.Normalize(core.LabelPhishing, &provided)
		if v < 80.0 || v > 100.0 {
			t.Fatalf("Expected redraw in [80,100], got %v", v)
		}
	}

	// Values above 100 clamp to 100, which is in-band for danger labels.
	provided = 250.0
	if v := n.Normalize(core.LabelScam, &provided); v != 100.0 {
		t.Errorf("Expected clamp to 100.0, got %v", v)
	}

	// But a clamped value still outside the band is redrawn.
	provided = -3.0
	v := n.Normalize(core.LabelSafe, &provided)
	if v < 5.0 || v > 20.0 {
		t.Errorf("Expected redraw in [5,20], got %v", v)
	}
}
