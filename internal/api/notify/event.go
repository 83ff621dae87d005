package notify

import (
	"encoding/json"
	"fmt"
)

// NotificationChannel is the bus channel state-changing operations publish to.
const NotificationChannel = "NOTIFICATION"

// Envelope is the agreed wrapper for payloads on the notification channel.
// The broker never interprets Data; it belongs to whoever consumes the event.
type Envelope struct {
	TenantID int64           `json:"tenant_id"`
	Payload  EnvelopePayload `json:"payload"`
}

type EnvelopePayload struct {
	EventName string          `json:"event_name"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent serializes an envelope for the notification channel.
func NewEvent(tenant int64, eventName string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("notify: encode event data: %w", err)
	}

	payload, err := json.Marshal(Envelope{
		TenantID: tenant,
		Payload: EnvelopePayload{
			EventName: eventName,
			Data:      raw,
		},
	})
	if err != nil {
		return Event{}, fmt.Errorf("notify: encode envelope: %w", err)
	}

	return Event{Channel: NotificationChannel, Payload: string(payload)}, nil
}
