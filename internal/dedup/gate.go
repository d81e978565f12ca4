package dedup

import (
	"sync"

	"github.com/shieldbox/shieldbox/internal/core"
)

// Gate suppresses repeated emission of the idle heartbeat signal. It holds
// a single process-wide last-sent label; there is no per-source or
// per-topic partitioning.
type Gate struct {
	mu   sync.Mutex
	last core.Label
}

// NewGate creates a gate with an empty last-sent state.
func NewGate() *Gate {
	return &Gate{}
}

// ShouldSuppress reports whether a dispatch for label should be skipped:
// only when the previous accepted label and the current one are both the
// idle signal.
func (g *Gate) ShouldSuppress(label core.Label) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last == core.LabelNoMail && label == core.LabelNoMail
}

// Record stores the label of a dispatched notification. Any non-idle label
// resets the gate, so an idle-to-active transition always sends.
func (g *Gate) Record(label core.Label) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = label
}

// Last returns the last recorded label. Empty until the first dispatch.
func (g *Gate) Last() core.Label {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
