package dedup

import (
	"testing"

	"github.com/shieldbox/shieldbox/internal/core"
)

func TestGateSuppressesRepeatedIdleSignal(t *testing.T) {
	g := NewGate()

	// First idle signal always passes.
	if g.ShouldSuppress(core.LabelNoMail) {
		t.Error("Expected first no_mail to pass")
	}
	g.Record(core.LabelNoMail)

	// Second consecutive idle signal is suppressed.
	if !g.ShouldSuppress(core.LabelNoMail) {
		t.Error("Expected repeated no_mail to be suppressed")
	}
}

func TestGateNonIdleAlwaysSends(t *testing.T) {
	g := NewGate()
	g.Record(core.LabelNoMail)

	if g.ShouldSuppress(core.LabelPhishing) {
		t.Error("Expected idle-to-active transition to send")
	}
	g.Record(core.LabelPhishing)

	// A repeated non-idle label is still sent; only no_mail dedups.
	if g.ShouldSuppress(core.LabelPhishing) {
		t.Error("Expected repeated phishing to send")
	}
}

func TestGateResetsAfterNonIdle(t *testing.T) {
	g := NewGate()

	g.Record(core.LabelNoMail)
	g.Record(core.LabelPhishing)

	// no_mail after a non-idle label passes again.
	if g.ShouldSuppress(core.LabelNoMail) {
		t.Error("Expected no_mail after phishing to send")
	}
}
