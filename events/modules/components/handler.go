package components

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/model"
)

// Adder stores a described component.
type Adder interface {
	Add(ctx context.Context, d model.Description) (*model.Component, bool, error)
}

// HandleComponentRequested processes component.requested events from Kafka.
func HandleComponentRequested(ctx context.Context, msg []byte, adder Adder, logger *zap.Logger) error {
	var event RequestedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal RequestedEvent: %w", err)
	}
	if event.EventType != "" && event.EventType != EventTypeRequested {
		return fmt.Errorf("unexpected event type %q", event.EventType)
	}

	d, err := event.Component.Describe()
	if err != nil {
		return fmt.Errorf("invalid event %s: %w", event.EventID, err)
	}

	c, created, err := adder.Add(ctx, d)
	if err != nil {
		return fmt.Errorf("adding %s@%s: %w", d.ComponentName(), d.ComponentVersion(), err)
	}

	logger.Info("Processed component request",
		zap.String("event_id", event.EventID),
		zap.Int64("id", c.ID),
		zap.Bool("created", created),
		zap.Int("vulnerabilities", len(c.Vulnerabilities)))
	return nil
}
