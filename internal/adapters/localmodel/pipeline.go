package localmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// pipelineFile is the on-disk container format: a bundle wrapped under a
// single "pipeline" key, as exported by the complete-package training path.
type pipelineFile struct {
	Pipeline *Bundle  `json:"pipeline"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Pipeline wraps a predictor loaded from a bundle container. Equivalent to
// a direct predictor once unwrapped.
type Pipeline struct {
	inner core.Predictor
}

// LoadPipeline reads a pipeline container file and unwraps its predictor.
func LoadPipeline(path string, logger *zap.Logger) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model pipeline: %w", err)
	}

	var file pipelineFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model pipeline: %w", err)
	}
	if file.Pipeline == nil {
		return nil, fmt.Errorf("model pipeline file has no pipeline entry")
	}
	if err := file.Pipeline.Validate(); err != nil {
		return nil, err
	}

	if file.Accuracy != nil {
		logger.Info("Loaded model pipeline",
			zap.String("path", path),
			zap.Float64("accuracy", *file.Accuracy))
	}

	return &Pipeline{inner: NewBundlePredictor(file.Pipeline, logger)}, nil
}

// Predict delegates to the unwrapped predictor.
func (p *Pipeline) Predict(ctx context.Context, text string) (core.Label, error) {
	return p.inner.Predict(ctx, text)
}
