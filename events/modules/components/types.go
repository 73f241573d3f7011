// Package components handles Kafka events that ask the monitor to track a component.
package components

import (
	"time"

	"github.com/ortelius/component-monitor/model"
)

// EventTypeRequested is the event_type of RequestedEvent.
const EventTypeRequested = "component.requested"

// RequestedEvent asks for a component to be analyzed and stored.
type RequestedEvent struct {
	EventType     string                 `json:"event_type"`
	EventID       string                 `json:"event_id"`
	EventTime     time.Time              `json:"event_time"`
	SchemaVersion string                 `json:"schema_version"`
	Component     model.ComponentRequest `json:"component"`
}
