package localmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// Bundle is a self-contained text classification model: a bag-of-words
// vectorizer (vocabulary), a linear model (per-class weights and bias) and
// a label encoder (class names). It is the Go equivalent of the exported
// vectorizer/model/label_encoder triple.
type Bundle struct {
	Vocabulary map[string]int `json:"vocabulary"`
	Weights    [][]float64    `json:"weights"`
	Bias       []float64      `json:"bias"`
	Classes    []string       `json:"classes"`
}

// Validate checks the bundle dimensions against each other.
func (b *Bundle) Validate() error {
	if len(b.Classes) == 0 {
		return fmt.Errorf("model bundle has no classes")
	}
	if len(b.Weights) != len(b.Classes) {
		return fmt.Errorf("model bundle has %d weight rows for %d classes", len(b.Weights), len(b.Classes))
	}
	if len(b.Bias) != len(b.Classes) {
		return fmt.Errorf("model bundle has %d bias terms for %d classes", len(b.Bias), len(b.Classes))
	}
	for i, row := range b.Weights {
		if len(row) != len(b.Vocabulary) {
			return fmt.Errorf("weight row %d has %d features, vocabulary has %d", i, len(row), len(b.Vocabulary))
		}
	}
	for term, idx := range b.Vocabulary {
		if idx < 0 || idx >= len(b.Vocabulary) {
			return fmt.Errorf("vocabulary term %q has out-of-range index %d", term, idx)
		}
	}
	return nil
}

// LoadBundle reads and validates a model bundle from a JSON file.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse model bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	return &bundle, nil
}

// BundlePredictor implements the Predictor interface on top of a Bundle:
// decode(model.predict(vectorizer.encode(text))).
type BundlePredictor struct {
	bundle *Bundle
	logger *zap.Logger
}

// NewBundlePredictor creates a predictor from a validated bundle.
func NewBundlePredictor(bundle *Bundle, logger *zap.Logger) *BundlePredictor {
	return &BundlePredictor{
		bundle: bundle,
		logger: logger,
	}
}

// Predict classifies text with the linear model and decodes the class.
func (p *BundlePredictor) Predict(ctx context.Context, text string) (core.Label, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	scores := make([]float64, len(p.bundle.Classes))
	copy(scores, p.bundle.Bias)

	for term, count := range tokenCounts(text) {
		idx, ok := p.bundle.Vocabulary[term]
		if !ok {
			continue
		}
		for class := range scores {
			scores[class] += p.bundle.Weights[class][idx] * float64(count)
		}
	}

	best := 0
	for class := 1; class < len(scores); class++ {
		if scores[class] > scores[best] {
			best = class
		}
	}

	label := core.Label(p.bundle.Classes[best])
	p.logger.Debug("Local model prediction",
		zap.String("label", string(label)),
		zap.Float64("score", scores[best]))

	return label, nil
}

// tokenCounts splits lowercased text on non-alphanumeric runes.
func tokenCounts(text string) map[string]int {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}
