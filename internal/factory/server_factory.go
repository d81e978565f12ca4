package factory

import (
	"fmt"

	"github.com/shieldbox/shieldbox/internal/adapters/server"
	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/risk"
	"go.uber.org/zap"
)

// ServerFactory creates scan front-ends based on configuration
type ServerFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *core.ScanService
	dispatcher core.Dispatcher
	normalizer *risk.Normalizer
}

// NewServerFactory creates a new server factory
func NewServerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ScanService,
	dispatcher core.Dispatcher,
	normalizer *risk.Normalizer,
) *ServerFactory {
	return &ServerFactory{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		dispatcher: dispatcher,
		normalizer: normalizer,
	}
}

// CreateScanServer creates a scan server based on the configuration
func (f *ServerFactory) CreateScanServer() (core.ScanServer, error) {
	serverCfg := f.cfg.GetServer()
	notifyCfg := f.cfg.GetNotify()

	switch serverCfg.Mode {
	case "http":
		return server.NewHTTPServer(
			f.service,
			f.dispatcher,
			f.normalizer,
			f.logger,
			serverCfg.ListenAddress,
			notifyCfg.EmailTopic,
			notifyCfg.URLTopic,
			notifyCfg.AlertTopic,
		), nil
	case "smtp":
		return server.NewSMTPServer(
			f.service,
			f.dispatcher,
			f.normalizer,
			f.logger,
			serverCfg.SMTPListenAddress,
			serverCfg.SMTPDomain,
			serverCfg.SMTPRelayAddress,
			notifyCfg.EmailTopic,
			serverCfg.LabelHeader,
			serverCfg.ReasonHeader,
		), nil
	case "cli":
		return server.NewCLIServer(
			f.service,
			f.dispatcher,
			f.normalizer,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported server mode: %s", serverCfg.Mode)
	}
}
