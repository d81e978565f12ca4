package notify

import (
	"context"

	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// NopPublisher discards broker publishes. Used when the MQTT sink is
// disabled so the dispatcher wiring stays uniform.
type NopPublisher struct {
	logger *zap.Logger
}

// NewNopPublisher creates a publisher that drops everything.
func NewNopPublisher(logger *zap.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

// Publish discards the payload.
func (p *NopPublisher) Publish(ctx context.Context, topic string, payload core.SinkPayload) error {
	p.logger.Debug("Broker sink disabled, publish dropped", zap.String("topic", topic))
	return nil
}

// NopAlerter discards chat alerts. Used when the Telegram sink is disabled.
type NopAlerter struct {
	logger *zap.Logger
}

// NewNopAlerter creates an alerter that drops everything.
func NewNopAlerter(logger *zap.Logger) *NopAlerter {
	return &NopAlerter{logger: logger}
}

// Send discards the message.
func (a *NopAlerter) Send(ctx context.Context, message string) error {
	a.logger.Debug("Chat sink disabled, alert dropped")
	return nil
}
