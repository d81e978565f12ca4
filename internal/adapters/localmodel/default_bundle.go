package localmodel

// DefaultBundle returns the compiled-in fallback model. It is the secondary
// pre-loaded classifier used when the configured predictor cannot be
// resolved, so it must never fail to build. Weights are a coarse manual fit
// over the three original classes.
func DefaultBundle() *Bundle {
	terms := []struct {
		term     string
		safe     float64
		phishing float64
		scam     float64
	}{
		{"password", -0.3, 1.1, 0.1},
		{"verify", -0.2, 1.0, 0.2},
		{"account", -0.1, 0.8, 0.2},
		{"login", -0.2, 0.9, 0.0},
		{"suspended", -0.2, 1.0, 0.1},
		{"click", -0.1, 0.7, 0.3},
		{"bank", -0.1, 0.6, 0.6},
		{"urgent", -0.2, 0.5, 0.7},
		{"donate", -0.1, 0.1, 1.0},
		{"charity", -0.1, 0.0, 0.9},
		{"sponsor", -0.1, 0.0, 0.8},
		{"prize", -0.2, 0.2, 1.0},
		{"winner", -0.2, 0.2, 0.9},
		{"lottery", -0.3, 0.2, 1.1},
		{"inheritance", -0.2, 0.1, 1.0},
		{"transfer", 0.0, 0.4, 0.6},
		{"meeting", 0.6, -0.3, -0.3},
		{"newsletter", 0.7, -0.3, -0.3},
		{"invoice", 0.4, 0.1, -0.1},
		{"thanks", 0.5, -0.2, -0.2},
	}

	bundle := &Bundle{
		Vocabulary: make(map[string]int, len(terms)),
		Weights: [][]float64{
			make([]float64, len(terms)),
			make([]float64, len(terms)),
			make([]float64, len(terms)),
		},
		Bias:    []float64{0.3, -0.15, -0.15},
		Classes: []string{"safe", "phishing", "scam"},
	}

	for i, t := range terms {
		bundle.Vocabulary[t.term] = i
		bundle.Weights[0][i] = t.safe
		bundle.Weights[1][i] = t.phishing
		bundle.Weights[2][i] = t.scam
	}

	return bundle
}
