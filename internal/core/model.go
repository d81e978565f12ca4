package core

import (
	"time"
)

// Label is the threat category assigned to a piece of scanned text.
type Label string

const (
	LabelSafe       Label = "safe"
	LabelPhishing   Label = "phishing"
	LabelScam       Label = "scam"
	LabelFraudulent Label = "fraudulent"
	LabelSuspicious Label = "suspicious"
	LabelSpam       Label = "spam"
	LabelInvalid    Label = "invalid"
	LabelError      Label = "error"

	// LabelNoMail is the idle heartbeat emitted by the auto scanner when no
	// email is open. It carries zero risk and is deduplicated before dispatch.
	LabelNoMail Label = "no_mail"
)

// IsDanger reports whether the label warrants a human chat alert in
// addition to the broker publish.
func (l Label) IsDanger() bool {
	switch l {
	case LabelPhishing, LabelScam, LabelFraudulent, LabelSuspicious:
		return true
	}
	return false
}

// ScanRequest is a classification request handed to the service by a
// front-end. Topic and Source travel with the verdict into dispatch.
type ScanRequest struct {
	Text   string
	Source string
	Topic  string
}

// Verdict is the outcome of classifying a piece of text. Immutable once
// produced; returned to the caller and consumed by the dispatcher.
type Verdict struct {
	Label  Label
	Reason string
}

// NotificationEvent is built once per classification and consumed exactly
// once by the notification dispatcher.
type NotificationEvent struct {
	ID        string
	Label     Label
	Topic     string
	Risk      float64
	Source    string
	Timestamp time.Time
}

// SinkPayload is the structured message published to the broker topic.
type SinkPayload struct {
	Label  string  `json:"label"`
	Risk   float64 `json:"risk"`
	Source string  `json:"source"`
}
