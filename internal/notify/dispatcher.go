package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/dedup"
	"go.uber.org/zap"
)

// Dispatcher fans classification results out to the external sinks through
// a bounded queue consumed by a small worker pool, so sink latency never
// adds to the caller-visible response time. Sink failures are logged and
// never retried; there is no ordering guarantee between the classification
// response and the notification becoming externally visible.
type Dispatcher struct {
	publisher   core.Publisher
	alerter     core.Alerter
	gate        *dedup.Gate
	logger      *zap.Logger
	queue       chan core.NotificationEvent
	sinkTimeout time.Duration
	workers     int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewDispatcher creates a dispatcher. Call Start before Dispatch.
func NewDispatcher(
	publisher core.Publisher,
	alerter core.Alerter,
	gate *dedup.Gate,
	logger *zap.Logger,
	queueSize int,
	workers int,
	sinkTimeout time.Duration,
) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	if sinkTimeout <= 0 {
		sinkTimeout = 2 * time.Second
	}

	return &Dispatcher{
		publisher:   publisher,
		alerter:     alerter,
		gate:        gate,
		logger:      logger,
		queue:       make(chan core.NotificationEvent, queueSize),
		sinkTimeout: sinkTimeout,
		workers:     workers,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
		d.logger.Info("Notification dispatcher started",
			zap.Int("workers", d.workers),
			zap.Int("queue_size", cap(d.queue)))
	})
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}

// Dispatch enqueues a notification without blocking. When the queue is
// full the event is dropped, not the request.
func (d *Dispatcher) Dispatch(label core.Label, topic string, risk float64, source string) {
	event := core.NotificationEvent{
		ID:        uuid.NewString(),
		Label:     label,
		Topic:     topic,
		Risk:      risk,
		Source:    source,
		Timestamp: time.Now(),
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("Notification queue full, event dropped",
			zap.String("event_id", event.ID),
			zap.String("label", string(label)))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event core.NotificationEvent) {
	if d.gate.ShouldSuppress(event.Label) {
		d.logger.Debug("Ignored duplicate idle signal", zap.String("event_id", event.ID))
		return
	}

	payload := core.SinkPayload{
		Label:  string(event.Label),
		Risk:   event.Risk,
		Source: event.Source,
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
	err := d.publisher.Publish(ctx, event.Topic, payload)
	cancel()
	if err != nil {
		d.logger.Error("Broker publish failed",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("topic", event.Topic))
	}

	// The gate records attempts, not acknowledged deliveries.
	d.gate.Record(event.Label)

	if event.Label.IsDanger() {
		message := FormatAlert(event)
		ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
		err := d.alerter.Send(ctx, message)
		cancel()
		if err != nil {
			d.logger.Error("Chat alert failed",
				zap.Error(err),
				zap.String("event_id", event.ID),
				zap.String("label", string(event.Label)))
		}
	}
}
