package factory

import (
	"fmt"

	"github.com/shieldbox/shieldbox/internal/adapters/bedrock"
	"github.com/shieldbox/shieldbox/internal/adapters/gemini"
	"github.com/shieldbox/shieldbox/internal/adapters/localmodel"
	"github.com/shieldbox/shieldbox/internal/adapters/openai"
	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/utils"
	"go.uber.org/zap"
)

// PredictorFactory resolves the external classifier once at startup.
type PredictorFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewPredictorFactory creates a new predictor factory
func NewPredictorFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *PredictorFactory {
	return &PredictorFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreatePredictor creates a predictor based on the configured provider.
// File-based providers fall back to the compiled-in bundle when loading
// fails; only a broken built-in bundle is fatal.
func (f *PredictorFactory) CreatePredictor() (core.Predictor, error) {
	modelCfg := f.cfg.GetModel()

	switch modelCfg.Provider {
	case "local":
		bundle, err := localmodel.LoadBundle(modelCfg.BundlePath)
		if err != nil {
			f.logger.Warn("Failed to load model bundle, using built-in bundle",
				zap.String("path", modelCfg.BundlePath),
				zap.Error(err))
			return f.builtinPredictor()
		}
		return localmodel.NewBundlePredictor(bundle, f.logger), nil
	case "pipeline":
		pipeline, err := localmodel.LoadPipeline(modelCfg.PipelinePath, f.logger)
		if err != nil {
			f.logger.Warn("Failed to load model pipeline, using built-in bundle",
				zap.String("path", modelCfg.PipelinePath),
				zap.Error(err))
			return f.builtinPredictor()
		}
		return pipeline, nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreatePredictor()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreatePredictor()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreatePredictor()
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", modelCfg.Provider)
	}
}

func (f *PredictorFactory) builtinPredictor() (core.Predictor, error) {
	bundle := localmodel.DefaultBundle()
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("built-in model bundle is invalid: %w", err)
	}
	return localmodel.NewBundlePredictor(bundle, f.logger), nil
}
