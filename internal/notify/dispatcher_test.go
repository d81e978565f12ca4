package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/dedup"
	"go.uber.org/zap"
)

type fakePublisher struct {
	mu       sync.Mutex
	payloads []core.SinkPayload
	topics   []string
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload core.SinkPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	f.topics = append(f.topics, topic)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeAlerter struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeAlerter) Send(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.err
}

func (f *fakeAlerter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestDispatcher(pub *fakePublisher, al *fakeAlerter) *Dispatcher {
	// Single worker keeps delivery order deterministic in tests.
	return NewDispatcher(pub, al, dedup.NewGate(), zap.NewNop(), 16, 1, time.Second)
}

func drain(t *testing.T, d *Dispatcher) {
	t.Helper()
	d.Stop()
}

func TestDispatchDangerLabelHitsBothSinks(t *testing.T) {
	pub := &fakePublisher{}
	al := &fakeAlerter{}
	d := newTestDispatcher(pub, al)
	d.Start()

	d.Dispatch(core.LabelFraudulent, "shieldbox/email_scan", 92.3, "manual")
	drain(t, d)

	if pub.count() != 1 {
		t.Fatalf("Expected 1 broker publish, got %d", pub.count())
	}
	if al.count() != 1 {
		t.Fatalf("Expected 1 chat alert, got %d", al.count())
	}

	payload := pub.payloads[0]
	if payload.Label != "fraudulent" || payload.Risk != 92.3 || payload.Source != "manual" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
	if pub.topics[0] != "shieldbox/email_scan" {
		t.Errorf("Unexpected topic: %s", pub.topics[0])
	}

	message := al.messages[0]
	if !strings.Contains(message, "FRAUD DETECTED") || !strings.Contains(message, "92.3%") {
		t.Errorf("Unexpected alert message: %s", message)
	}
}

func TestDispatchSafeLabelSkipsChatSink(t *testing.T) {
	pub := &fakePublisher{}
	al := &fakeAlerter{}
	d := newTestDispatcher(pub, al)
	d.Start()

	d.Dispatch(core.LabelSafe, "shieldbox/email_scan", 12.0, "manual")
	drain(t, d)

	if pub.count() != 1 {
		t.Errorf("Expected 1 broker publish, got %d", pub.count())
	}
	if al.count() != 0 {
		t.Errorf("Expected no chat alerts, got %d", al.count())
	}
}

func TestDispatchDedupsRepeatedIdleSignal(t *testing.T) {
	pub := &fakePublisher{}
	al := &fakeAlerter{}
	d := newTestDispatcher(pub, al)
	d.Start()

	d.Dispatch(core.LabelNoMail, "shieldbox/email_scan", 0.0, "auto")
	d.Dispatch(core.LabelNoMail, "shieldbox/email_scan", 0.0, "auto")
	drain(t, d)

	if pub.count() != 1 {
		t.Errorf("Expected consecutive no_mail to publish once, got %d", pub.count())
	}
}

func TestDispatchIdleActiveIdlePublishesThreeTimes(t *testing.T) {
	pub := &fakePublisher{}
	al := &fakeAlerter{}
	d := newTestDispatcher(pub, al)
	d.Start()

	d.Dispatch(core.LabelNoMail, "shieldbox/email_scan", 0.0, "auto")
	d.Dispatch(core.LabelPhishing, "shieldbox/email_scan", 95.0, "auto")
	d.Dispatch(core.LabelNoMail, "shieldbox/email_scan", 0.0, "auto")
	drain(t, d)

	if pub.count() != 3 {
		t.Errorf("Expected 3 publishes for no_mail/phishing/no_mail, got %d", pub.count())
	}
	if al.count() != 1 {
		t.Errorf("Expected 1 chat alert for phishing, got %d", al.count())
	}
}

func TestDispatchSinkFailuresAreIndependent(t *testing.T) {
	pub := &fakePublisher{err: context.DeadlineExceeded}
	al := &fakeAlerter{}
	d := newTestDispatcher(pub, al)
	d.Start()

	// A broker failure must not stop the chat alert, and vice versa.
	d.Dispatch(core.LabelPhishing, "shieldbox/email_scan", 90.0, "manual")
	drain(t, d)

	if pub.count() != 1 {
		t.Errorf("Expected 1 publish attempt, got %d", pub.count())
	}
	if al.count() != 1 {
		t.Errorf("Expected chat alert despite broker failure, got %d", al.count())
	}
}

func TestFormatAlertEmbedsRiskAndTimestamp(t *testing.T) {
	event := core.NotificationEvent{
		Label:     core.LabelPhishing,
		Risk:      88.46,
		Source:    "auto",
		Timestamp: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
	}

	message := FormatAlert(event)
	if !strings.Contains(message, "PHISHING DETECTED") {
		t.Errorf("Missing label header: %s", message)
	}
	if !strings.Contains(message, "88.5%") {
		t.Errorf("Expected risk with one decimal: %s", message)
	}
	if !strings.Contains(message, "2025-03-14 15:09:26") {
		t.Errorf("Expected timestamp: %s", message)
	}
}
