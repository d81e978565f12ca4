package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// Publisher is an MQTT implementation of the Publisher interface. It
// publishes scan verdicts to the broker topics consumed by the IoT
// alerting device. Delivery is best-effort: QoS defaults to 0 and no
// acknowledgement is awaited beyond the caller's timeout.
type Publisher struct {
	client pahomqtt.Client
	qos    byte
	logger *zap.Logger
}

// NewPublisher connects to the broker and returns a publisher.
func NewPublisher(brokerURL, clientID string, qos byte, connectTimeout time.Duration, logger *zap.Logger) (*Publisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := pahomqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", brokerURL, err)
	}

	logger.Info("Connected to MQTT broker",
		zap.String("broker", brokerURL),
		zap.String("client_id", clientID))

	return &Publisher{
		client: client,
		qos:    qos,
		logger: logger,
	}, nil
}

// Publish sends a payload to the given topic, bounded by ctx.
func (p *Publisher) Publish(ctx context.Context, topic string, payload core.SinkPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode sink payload: %w", err)
	}

	token := p.client.Publish(topic, p.qos, false, data)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
	}

	p.logger.Debug("Published scan result",
		zap.String("topic", topic),
		zap.String("label", payload.Label))

	return nil
}

// Close disconnects from the broker, allowing in-flight work to finish.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
