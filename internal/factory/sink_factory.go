package factory

import (
	"github.com/shieldbox/shieldbox/internal/adapters/mqtt"
	"github.com/shieldbox/shieldbox/internal/adapters/telegram"
	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/notify"
	"go.uber.org/zap"
)

// SinkFactory creates the notification sinks. Disabled sinks are replaced
// with no-op implementations so the dispatcher never special-cases them.
type SinkFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSinkFactory creates a new sink factory
func NewSinkFactory(cfg *config.Config, logger *zap.Logger) *SinkFactory {
	return &SinkFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePublisher creates the broker sink
func (f *SinkFactory) CreatePublisher() (core.Publisher, error) {
	mqttCfg := f.cfg.GetMQTT()
	if !mqttCfg.Enabled {
		return notify.NewNopPublisher(f.logger), nil
	}
	return mqtt.NewPublisher(
		mqttCfg.BrokerURL,
		mqttCfg.ClientID,
		mqttCfg.QoS,
		mqttCfg.ConnectTimeout,
		f.logger,
	)
}

// CreateAlerter creates the chat-alert sink
func (f *SinkFactory) CreateAlerter() (core.Alerter, error) {
	telegramCfg := f.cfg.GetTelegram()
	if !telegramCfg.Enabled || telegramCfg.BotToken == "" {
		return notify.NewNopAlerter(f.logger), nil
	}
	return telegram.NewNotifier(telegramCfg.BotToken, telegramCfg.ChatID, f.logger)
}
