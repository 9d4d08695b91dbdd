package realtime

import "time"

// Event is a realtime notification fanned out to connected portal clients.
type Event struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	Recipients []string    `json:"recipients,omitempty"`
	SentAt     time.Time   `json:"sent_at"`
}

// Event types published by the portal.
const (
	EventMessageCreated = "message.created"
	EventSessionCreated = "session.created"
)
