package notify

import (
	"fmt"

	"github.com/shieldbox/shieldbox/internal/core"
)

// alertTemplates are the per-label chat alert headers.
var alertTemplates = map[core.Label]string{
	core.LabelPhishing:   "🎣 *PHISHING DETECTED*\n🚨 ShieldBox Alert: Phishing email detected!",
	core.LabelScam:       "⚠️ *SCAM DETECTED*\n🚨 ShieldBox Alert: Scam email detected!",
	core.LabelFraudulent: "🚫 *FRAUD DETECTED*\n🚨 ShieldBox Alert: Fraudulent content detected!",
	core.LabelSuspicious: "🔗 *SUSPICIOUS CONTENT*\n🚨 ShieldBox Alert: Suspicious content detected!",
	core.LabelSafe:       "✅ *SAFE CONTENT*\n🛡️ ShieldBox: Content verified as safe",
}

// FormatAlert builds the human-readable chat message for an event: the
// label template plus risk percentage (one decimal) and a short timestamp.
func FormatAlert(event core.NotificationEvent) string {
	header, ok := alertTemplates[event.Label]
	if !ok {
		header = fmt.Sprintf("🚨 ShieldBox Alert: %s", event.Label)
	}

	return fmt.Sprintf("%s\n\n📋 Risk: %.1f%% (source: %s)\n\n⏰ Time: %s",
		header,
		event.Risk,
		event.Source,
		event.Timestamp.Format("2006-01-02 15:04:05"))
}
