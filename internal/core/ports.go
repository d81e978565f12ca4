package core

import (
	"context"
)

// Predictor is the external text classifier consumed as a black box.
// Implementations are resolved once at startup, never per call.
type Predictor interface {
	// Predict classifies text into a raw label
	Predict(ctx context.Context, text string) (Label, error)
}

// VerdictCache is a bounded, fill-once memoization table mapping a text
// fingerprint bucket to a prior verdict. Entries are never mutated and
// never evicted; once capacity is reached no further entries are admitted.
type VerdictCache interface {
	// Get retrieves the verdict stored for a fingerprint bucket
	Get(ctx context.Context, bucket uint32) (*Verdict, error)

	// Set stores a verdict for a fingerprint bucket (best-effort)
	Set(ctx context.Context, bucket uint32, verdict *Verdict) error
}

// Publisher publishes structured scan results to the message broker.
type Publisher interface {
	// Publish sends a payload to the given topic (best-effort)
	Publish(ctx context.Context, topic string, payload SinkPayload) error
}

// Alerter sends human-readable alerts to the chat channel.
type Alerter interface {
	// Send delivers a pre-formatted alert message (best-effort)
	Send(ctx context.Context, message string) error
}

// Dispatcher fans a classification result out to the external sinks
// without blocking the caller.
type Dispatcher interface {
	// Dispatch enqueues a notification for asynchronous delivery
	Dispatch(label Label, topic string, risk float64, source string)
}

// ScanServer is a front-end serving scan requests (HTTP, SMTP or CLI).
type ScanServer interface {
	// Start starts the scan server
	Start() error

	// Stop stops the scan server
	Stop() error
}
