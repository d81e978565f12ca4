package risk

import (
	"math"
	"math/rand"

	"github.com/shieldbox/shieldbox/internal/core"
)

// Band is the permitted risk-percentage range for a label category.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// DefaultBands returns the built-in label bands.
func DefaultBands() map[core.Label]Band {
	danger := Band{Min: 80.0, Max: 100.0}
	return map[core.Label]Band{
		core.LabelSafe:       {Min: 5.0, Max: 20.0},
		core.LabelSpam:       {Min: 50.0, Max: 80.0},
		core.LabelPhishing:   danger,
		core.LabelScam:       danger,
		core.LabelFraudulent: danger,
		core.LabelSuspicious: danger,
	}
}

// Normalizer maps a verdict label to a bounded risk percentage in [0,100].
type Normalizer struct {
	bands map[core.Label]Band
}

// NewNormalizer creates a normalizer. A nil band map uses the defaults.
func NewNormalizer(bands map[core.Label]Band) *Normalizer {
	if bands == nil {
		bands = DefaultBands()
	}
	return &Normalizer{bands: bands}
}

// Normalize returns the risk percentage for a label. A provided value is
// clamped to [0,100] and rounded to two decimals; if it is absent or falls
// outside the label's band it is discarded and replaced by a fresh uniform
// draw from the band. Labels without a band (including no_mail) are 0.
func (n *Normalizer) Normalize(label core.Label, provided *float64) float64 {
	band, ok := n.bands[label]
	if !ok {
		return 0.0
	}

	if provided != nil && !math.IsNaN(*provided) && !math.IsInf(*provided, 0) {
		v := math.Min(math.Max(*provided, 0.0), 100.0)
		v = math.Round(v*100) / 100
		if band.Contains(v) {
			return v
		}
		// Out-of-band values are never silently kept.
	}

	return n.draw(band)
}

func (n *Normalizer) draw(band Band) float64 {
	v := band.Min + rand.Float64()*(band.Max-band.Min)
	return math.Round(v*100) / 100
}
