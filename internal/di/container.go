package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/dedup"
	"github.com/shieldbox/shieldbox/internal/factory"
	"github.com/shieldbox/shieldbox/internal/logging"
	"github.com/shieldbox/shieldbox/internal/notify"
	"github.com/shieldbox/shieldbox/internal/patterns"
	"github.com/shieldbox/shieldbox/internal/risk"
	"github.com/shieldbox/shieldbox/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPredictorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSinkFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register predictor
	if err := container.Provide(func(f *factory.PredictorFactory) (core.Predictor, error) {
		return f.CreatePredictor()
	}); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register pattern library
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*patterns.Library, error) {
		return patterns.NewLibrary(cfg.GetPatterns(), logger)
	}); err != nil {
		return nil, err
	}

	// Register risk normalizer
	if err := container.Provide(func() *risk.Normalizer {
		return risk.NewNormalizer(risk.DefaultBands())
	}); err != nil {
		return nil, err
	}

	// Register dedup gate
	if err := container.Provide(dedup.NewGate); err != nil {
		return nil, err
	}

	// Register notification sinks
	if err := container.Provide(func(f *factory.SinkFactory) (core.Publisher, error) {
		return f.CreatePublisher()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.SinkFactory) (core.Alerter, error) {
		return f.CreateAlerter()
	}); err != nil {
		return nil, err
	}

	// Register dispatcher
	if err := container.Provide(func(
		cfg *config.Config,
		publisher core.Publisher,
		alerter core.Alerter,
		gate *dedup.Gate,
		logger *zap.Logger,
	) *notify.Dispatcher {
		notifyCfg := cfg.GetNotify()
		return notify.NewDispatcher(
			publisher,
			alerter,
			gate,
			logger,
			notifyCfg.QueueSize,
			notifyCfg.Workers,
			notifyCfg.SinkTimeout,
		)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(d *notify.Dispatcher) core.Dispatcher {
		return d
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(func(
		cfg *config.Config,
		predictor core.Predictor,
		cache core.VerdictCache,
		library *patterns.Library,
		logger *zap.Logger,
		cacheFactory *factory.CacheFactory,
	) *core.ScanService {
		scanCfg := cfg.GetScan()
		modelCfg := cfg.GetModel()
		return core.NewScanService(predictor, cache, library, logger, core.ScanServiceParams{
			CacheEnabled:        cacheFactory.IsCacheEnabled(),
			MinLength:           scanCfg.MinLength,
			PrefixBytes:         scanCfg.CachePrefixBytes,
			Buckets:             scanCfg.CacheBuckets,
			SuspiciousThreshold: scanCfg.SuspiciousThreshold,
			ModelTimeout:        modelCfg.Timeout,
		})
	}); err != nil {
		return nil, err
	}

	// Register scan server
	if err := container.Provide(func(f *factory.ServerFactory) (core.ScanServer, error) {
		return f.CreateScanServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
