// Package vulnerabilities handles Kafka event production for newly discovered component vulnerabilities.
package vulnerabilities

import (
	"time"

	"github.com/ortelius/component-monitor/model"
)

// EventTypeDiscovered is the event_type of DiscoveredEvent.
const EventTypeDiscovered = "component.vulnerabilities.discovered"

// DiscoveredEvent is published when a create or refresh records vulnerabilities.
type DiscoveredEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Component ComponentRef `json:"component"`

	// Trigger is "create" or "refresh"
	Trigger         string                `json:"trigger"`
	Vulnerabilities []model.Vulnerability `json:"vulnerabilities"`
}

// ComponentRef identifies the component in an event without its vulnerability list.
type ComponentRef struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Version    string              `json:"version"`
	Type       model.ComponentType `json:"type"`
	Ecosystem  model.Ecosystem     `json:"ecosystem,omitempty"`
	Identifier *string             `json:"identifier,omitempty"`
}
